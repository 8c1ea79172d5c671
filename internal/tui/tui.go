package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/go-errors/errors"
	"github.com/jesseduffield/gocui"

	"github.com/Joseda-hg/kitchencheck/internal/auth"
	"github.com/Joseda-hg/kitchencheck/internal/checklist"
	"github.com/Joseda-hg/kitchencheck/internal/model"
	"github.com/Joseda-hg/kitchencheck/internal/submission"
)

const (
	viewHeader  = "header"
	viewFooter  = "footer"
	viewOverdue = "overdue"
	viewPending = "pending"
	viewDone    = "done"
	viewDetail  = "detail"
	viewForm    = "form"
	viewHelp    = "help"
)

const refreshInterval = time.Minute

// Checklist is what the terminal UI needs from the checklist service.
type Checklist interface {
	Now() time.Time
	Board(ctx context.Context, session auth.Session, now time.Time) (checklist.Board, error)
	Submit(ctx context.Context, session auth.Session, taskID string, answer submission.Answer, comment string) (model.TaskRecord, error)
}

type UI struct {
	service Checklist
	session auth.Session
	gui     *gocui.Gui

	board   checklist.Board
	now     time.Time
	overdue []checklist.Item
	pending []checklist.Item
	done    []checklist.Item

	selectedOverdue int
	selectedPending int
	selectedDone    int
	focus           string

	form       *answerForm
	formEditor *formEditor
	helpActive bool
	status     string
}

type formEditor struct {
	ui *UI
}

func Run(service Checklist, session auth.Session) error {
	gui, err := gocui.NewGui(gocui.NewGuiOpts{OutputMode: gocui.OutputNormal})
	if err != nil {
		return err
	}
	defer gui.Close()

	ui := newUI(service, session)
	ui.gui = gui
	gui.Mouse = true
	ui.formEditor = &formEditor{ui: ui}

	gui.SetManagerFunc(ui.layout)
	if err := ui.bindKeys(gui); err != nil {
		return err
	}
	if err := ui.loadBoard(); err != nil {
		return err
	}

	stop := make(chan struct{})
	defer close(stop)
	go ui.refreshLoop(stop)

	if err := gui.MainLoop(); err != nil && !goerrors.Is(err, gocui.ErrQuit) {
		return err
	}
	return nil
}

func newUI(service Checklist, session auth.Session) *UI {
	return &UI{service: service, session: session, focus: viewOverdue}
}

// refreshLoop reloads the board so pending items turn overdue while the UI
// sits open.
func (u *UI) refreshLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			u.gui.Update(func(*gocui.Gui) error {
				if u.inputActive() {
					return nil
				}
				return u.loadBoard()
			})
		}
	}
}

func (u *UI) bindKeys(gui *gocui.Gui) error {
	if err := gui.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone, u.quit); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'q', gocui.ModNone, u.quitUnlessEditing); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'r', gocui.ModNone, u.reload); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", '?', gocui.ModNone, u.toggleHelp); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", gocui.KeyTab, gocui.ModNone, u.switchFocus); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", '1', gocui.ModNone, u.focusOverdue); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", '2', gocui.ModNone, u.focusPending); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", '3', gocui.ModNone, u.focusDone); err != nil {
		return err
	}
	for _, name := range []string{viewOverdue, viewPending, viewDone} {
		if err := gui.SetKeybinding(name, gocui.KeyArrowDown, gocui.ModNone, u.moveDown); err != nil {
			return err
		}
		if err := gui.SetKeybinding(name, 'j', gocui.ModNone, u.moveDown); err != nil {
			return err
		}
		if err := gui.SetKeybinding(name, gocui.KeyArrowUp, gocui.ModNone, u.moveUp); err != nil {
			return err
		}
		if err := gui.SetKeybinding(name, 'k', gocui.ModNone, u.moveUp); err != nil {
			return err
		}
		if err := gui.SetKeybinding(name, gocui.KeyEnter, gocui.ModNone, u.openForm); err != nil {
			return err
		}
		if err := gui.SetKeybinding(name, 'a', gocui.ModNone, u.openForm); err != nil {
			return err
		}
		viewName := name
		if err := gui.SetViewClickBinding(&gocui.ViewMouseBinding{ViewName: viewName, Key: gocui.MouseLeft, Handler: func(opts gocui.ViewMouseBindingOpts) error {
			return u.onListClick(gui, viewName, opts)
		}}); err != nil {
			return err
		}
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyEnter, gocui.ModNone, u.submitForm); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyTab, gocui.ModNone, u.nextFormField); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyBacktab, gocui.ModNone, u.prevFormField); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyArrowDown, gocui.ModNone, u.nextFormField); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyArrowUp, gocui.ModNone, u.prevFormField); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyEsc, gocui.ModNone, u.cancelForm); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewHelp, gocui.KeyEsc, gocui.ModNone, u.closeHelp); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewHelp, '?', gocui.ModNone, u.closeHelp); err != nil {
		return err
	}
	return nil
}

func (u *UI) layout(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	if maxX <= 0 || maxY <= 0 {
		return nil
	}

	headerView, err := gui.SetView(viewHeader, 0, 0, maxX-1, 0, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	headerView.Frame = false
	headerView.FgColor = gocui.ColorDefault
	u.renderHeader(headerView)

	footerY1 := max(maxY-2, 1)
	footerY0 := max(footerY1-2, 1)
	footerView, err := gui.SetView(viewFooter, 0, footerY0, maxX-1, footerY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	footerView.Frame = false
	footerView.Wrap = true
	footerView.FgColor = gocui.ColorDefault | gocui.AttrDim
	u.renderFooter(footerView)

	bodyTop := 1
	bodyBottom := footerY0 - 1
	if bodyBottom < bodyTop {
		return nil
	}

	l := computeLayout(maxX, bodyBottom-bodyTop+1)
	leftX1 := l.leftWidth - 1
	rightX0 := min(leftX1+1, maxX-1)

	overdueY1 := bodyTop + l.overdueHeight - 1
	pendingY1 := overdueY1 + l.pendingHeight
	lists := []struct {
		name   string
		title  string
		color  gocui.Attribute
		y0, y1 int
		items  []checklist.Item
		sel    int
	}{
		{viewOverdue, "1 Overdue", gocui.ColorRed, bodyTop, overdueY1, u.overdue, u.selectedOverdue},
		{viewPending, "2 Pending", gocui.ColorYellow, overdueY1 + 1, pendingY1, u.pending, u.selectedPending},
		{viewDone, "3 Done", gocui.ColorGreen, pendingY1 + 1, bodyBottom, u.done, u.selectedDone},
	}
	for _, list := range lists {
		view, err := gui.SetView(list.name, 0, list.y0, leftX1, list.y1, 0)
		if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
			return err
		}
		view.Title = fmt.Sprintf("%s (%d)", list.title, len(list.items))
		view.TitleColor = list.color
		applyViewStyle(view, u.focus == list.name, true)
		u.renderItemList(view, list.items, list.sel, u.focus == list.name)
	}

	detailView, err := gui.SetView(viewDetail, rightX0, bodyTop, maxX-1, bodyBottom, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		detailView.Title = "Detail"
		detailView.Wrap = true
	}
	applyViewStyle(detailView, false, false)
	u.renderDetail(detailView)

	if u.form != nil {
		if err := u.showForm(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewForm)
	}

	if u.helpActive {
		if err := u.showHelp(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewHelp)
	}

	if gui.CurrentView() == nil {
		_, _ = gui.SetCurrentView(u.focus)
	}
	gui.Cursor = u.form != nil
	return nil
}

type layout struct {
	leftWidth     int
	overdueHeight int
	pendingHeight int
	doneHeight    int
}

func computeLayout(width, height int) layout {
	safeWidth := max(width-2, 20)
	safeHeight := max(height, 9)

	leftWidth := safeWidth * 11 / 20
	if leftWidth < 30 {
		leftWidth = min(30, safeWidth)
	}

	overdueHeight := max(safeHeight*3/10, 3)
	pendingHeight := max(safeHeight*4/10, 3)
	doneHeight := safeHeight - overdueHeight - pendingHeight
	if doneHeight < 3 {
		doneHeight = 3
		pendingHeight = max(safeHeight-overdueHeight-doneHeight, 3)
	}

	return layout{
		leftWidth:     leftWidth,
		overdueHeight: overdueHeight,
		pendingHeight: pendingHeight,
		doneHeight:    doneHeight,
	}
}

func (u *UI) loadBoard() error {
	now := u.service.Now()
	board, err := u.service.Board(context.Background(), u.session, now)
	if err != nil {
		return err
	}

	u.board = board
	u.now = now
	u.overdue = board.Overdue
	u.pending = board.Pending
	u.done = board.Completed

	u.selectedOverdue = clampIndex(u.selectedOverdue, len(u.overdue))
	u.selectedPending = clampIndex(u.selectedPending, len(u.pending))
	u.selectedDone = clampIndex(u.selectedDone, len(u.done))
	return nil
}

func clampIndex(index, length int) int {
	if index >= length {
		return max(length-1, 0)
	}
	return index
}

func (u *UI) renderHeader(view *gocui.View) {
	view.Clear()
	summary := u.board.Summary
	fmt.Fprintf(view, "%s | %s (%s) | %d/%d done | %d overdue | %d pending | %d flagged",
		u.board.Date.Format("Mon 2 Jan 2006"), u.session.FullName, u.session.Role,
		summary.Completed, summary.Due, summary.Overdue, summary.Pending, summary.Flagged)
}

func (u *UI) renderFooter(view *gocui.View) {
	view.Clear()
	view.SetOrigin(0, 0)
	view.SetCursor(0, 0)

	if u.form != nil {
		fmt.Fprintln(view, "enter save | tab/↑↓ field | space/←→ toggle yes/no | esc cancel")
	} else {
		fmt.Fprintln(view, "enter/a answer | j/k move | tab cycle | 1-3 panes | r reload | ? help | q quit")
	}
	if u.status != "" {
		fmt.Fprint(view, u.status)
	}
}

func (u *UI) renderItemList(view *gocui.View, items []checklist.Item, selected int, focused bool) {
	view.Clear()
	for i, item := range items {
		prefix := " "
		if i == selected {
			if focused {
				prefix = ">"
			} else {
				prefix = "*"
			}
		}
		fmt.Fprintf(view, "%s %s\n", prefix, formatItemSummary(item, u.now))
	}
	if focused && len(items) > 0 {
		view.SetCursor(0, min(selected, len(items)-1))
	}
}

func (u *UI) renderDetail(view *gocui.View) {
	view.Clear()
	selected := u.selectedItem()
	if selected == nil {
		if len(u.board.Due()) == 0 && len(u.done) == 0 {
			fmt.Fprint(view, "Nothing is due today")
		} else {
			fmt.Fprint(view, "No task selected")
		}
		return
	}
	fmt.Fprint(view, strings.Join(detailLines(*selected), "\n"))
}

func (u *UI) onListClick(gui *gocui.Gui, viewName string, opts gocui.ViewMouseBindingOpts) error {
	if u.inputActive() {
		return nil
	}
	view, err := gui.View(viewName)
	if err != nil {
		return nil
	}

	_, y0, _, _ := view.Dimensions()
	_, oy := view.Origin()
	row := max(opts.Y-y0-1+oy, 0)

	switch viewName {
	case viewOverdue:
		u.selectedOverdue = clampIndex(row, len(u.overdue))
	case viewPending:
		u.selectedPending = clampIndex(row, len(u.pending))
	case viewDone:
		u.selectedDone = clampIndex(row, len(u.done))
	}
	return u.setFocus(gui, viewName)
}

func (u *UI) selectedItem() *checklist.Item {
	switch u.focus {
	case viewPending:
		if u.selectedPending >= 0 && u.selectedPending < len(u.pending) {
			return &u.pending[u.selectedPending]
		}
	case viewDone:
		if u.selectedDone >= 0 && u.selectedDone < len(u.done) {
			return &u.done[u.selectedDone]
		}
	default:
		if u.selectedOverdue >= 0 && u.selectedOverdue < len(u.overdue) {
			return &u.overdue[u.selectedOverdue]
		}
	}
	return nil
}

func (u *UI) switchFocus(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	switch u.focus {
	case viewOverdue:
		return u.setFocus(gui, viewPending)
	case viewPending:
		return u.setFocus(gui, viewDone)
	default:
		return u.setFocus(gui, viewOverdue)
	}
}

func (u *UI) focusOverdue(gui *gocui.Gui, _ *gocui.View) error {
	return u.setFocus(gui, viewOverdue)
}

func (u *UI) focusPending(gui *gocui.Gui, _ *gocui.View) error {
	return u.setFocus(gui, viewPending)
}

func (u *UI) focusDone(gui *gocui.Gui, _ *gocui.View) error {
	return u.setFocus(gui, viewDone)
}

func (u *UI) setFocus(gui *gocui.Gui, name string) error {
	if u.inputActive() {
		return nil
	}
	u.focus = name
	if gui != nil {
		_, _ = gui.SetCurrentView(name)
	}
	return nil
}

func (u *UI) moveDown(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	switch u.focus {
	case viewOverdue:
		if u.selectedOverdue < len(u.overdue)-1 {
			u.selectedOverdue++
		}
	case viewPending:
		if u.selectedPending < len(u.pending)-1 {
			u.selectedPending++
		}
	case viewDone:
		if u.selectedDone < len(u.done)-1 {
			u.selectedDone++
		}
	}
	return nil
}

func (u *UI) moveUp(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	switch u.focus {
	case viewOverdue:
		if u.selectedOverdue > 0 {
			u.selectedOverdue--
		}
	case viewPending:
		if u.selectedPending > 0 {
			u.selectedPending--
		}
	case viewDone:
		if u.selectedDone > 0 {
			u.selectedDone--
		}
	}
	return nil
}

func (u *UI) reload(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.status = ""
	return u.loadBoard()
}

func (u *UI) toggleHelp(gui *gocui.Gui, _ *gocui.View) error {
	if u.form != nil {
		return nil
	}
	u.helpActive = !u.helpActive
	if !u.helpActive && gui != nil {
		_ = gui.DeleteView(viewHelp)
		_, _ = gui.SetCurrentView(u.focus)
	}
	return nil
}

func (u *UI) closeHelp(gui *gocui.Gui, _ *gocui.View) error {
	u.helpActive = false
	if gui != nil {
		_ = gui.DeleteView(viewHelp)
		_, _ = gui.SetCurrentView(u.focus)
	}
	return nil
}

func (u *UI) showHelp(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := max(60, maxX/2)
	height := 14
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewHelp, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Title = "Help"
		view.Wrap = true
	}
	view.Clear()
	fmt.Fprint(view, helpText())
	_, _ = gui.SetCurrentView(viewHelp)
	return nil
}

// openForm starts an answer for the selected item. Completed items can be
// answered again; every submission is kept.
func (u *UI) openForm(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	selected := u.selectedItem()
	if selected == nil {
		return nil
	}
	u.form = newAnswerForm(*selected)
	u.status = ""
	return nil
}

func (u *UI) showForm(gui *gocui.Gui) error {
	if u.form == nil {
		return nil
	}

	maxX, maxY := gui.Size()
	width := max(60, maxX/2)
	height := min(10, max(7, maxY/2))
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewForm, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Wrap = true
	}
	view.Title = u.form.item.Task.Title
	view.Editable = true
	view.KeybindOnEdit = true
	view.Editor = u.formEditor
	u.renderForm(view)
	_, _ = gui.SetCurrentView(viewForm)
	return nil
}

// submitForm saves the answer. A rejected answer keeps the form open with
// the validator's message in the footer.
func (u *UI) submitForm(gui *gocui.Gui, _ *gocui.View) error {
	if u.form == nil {
		return nil
	}

	_, err := u.service.Submit(context.Background(), u.session, u.form.item.Task.ID, u.form.answer(), u.form.comment())
	if err != nil {
		var subErr *checklist.SubmissionError
		if errors.As(err, &subErr) {
			u.status = subErr.Message()
			if errors.Is(err, submission.ErrCommentRequired) {
				u.form.index = fieldComment
			}
			return nil
		}
		if errors.Is(err, checklist.ErrNotFound) || errors.Is(err, checklist.ErrInactiveTask) || errors.Is(err, auth.ErrForbidden) {
			u.status = err.Error()
			return nil
		}
		return err
	}

	title := u.form.item.Task.Title
	u.closeForm(gui)
	u.status = fmt.Sprintf("Recorded %s", title)
	return u.loadBoard()
}

func (u *UI) cancelForm(gui *gocui.Gui, _ *gocui.View) error {
	u.closeForm(gui)
	u.status = ""
	return nil
}

func (u *UI) closeForm(gui *gocui.Gui) {
	u.form = nil
	if gui != nil {
		_ = gui.DeleteView(viewForm)
		_, _ = gui.SetCurrentView(u.focus)
	}
}

func (u *UI) nextFormField(_ *gocui.Gui, view *gocui.View) error {
	if u.form == nil {
		return nil
	}
	if u.form.index < len(u.form.fields)-1 {
		u.form.index++
	}
	u.renderForm(view)
	return nil
}

func (u *UI) prevFormField(_ *gocui.Gui, view *gocui.View) error {
	if u.form == nil {
		return nil
	}
	if u.form.index > 0 {
		u.form.index--
	}
	u.renderForm(view)
	return nil
}

func (u *UI) renderForm(view *gocui.View) {
	if u.form == nil || view == nil {
		return
	}
	view.Clear()
	if u.form.item.Range != "" {
		fmt.Fprintf(view, "  Acceptable: %s\n", u.form.item.Range)
	} else {
		fmt.Fprintln(view)
	}
	for index, field := range u.form.fields {
		prefix := "  "
		if index == u.form.index {
			prefix = "> "
		}
		label := field.Label
		if index == fieldComment && u.form.preview().ShouldFlag {
			label += " (required)"
		}
		fmt.Fprintf(view, "%s%s: %s\n", prefix, label, field.Value)
	}
	if strings.TrimSpace(u.form.fields[fieldValue].Value) != "" {
		if result := u.form.preview(); result.Message != "" {
			fmt.Fprintf(view, "\n  %s", result.Message)
		}
	}

	field := u.form.fields[u.form.index]
	label := field.Label
	if u.form.index == fieldComment && u.form.preview().ShouldFlag {
		label += " (required)"
	}
	cursorX := len([]rune(label+": ")) + len([]rune(field.Value)) + 2
	view.SetCursor(cursorX, u.form.index+1)
}

func (e *formEditor) Edit(view *gocui.View, key gocui.Key, ch rune, mod gocui.Modifier) bool {
	ui := e.ui
	if ui == nil || ui.form == nil || view == nil {
		return false
	}
	field := &ui.form.fields[ui.form.index]

	if ui.form.isBooleanField() {
		switch {
		case key == gocui.KeyArrowRight, key == gocui.KeyArrowLeft, key == gocui.KeySpace:
			field.Value = toggleYesNo(field.Value)
		case ch == 'y' || ch == 'Y':
			field.Value = "yes"
		case ch == 'n' || ch == 'N':
			field.Value = "no"
		case key == gocui.KeyBackspace, key == gocui.KeyBackspace2, key == gocui.KeyCtrlU:
			field.Value = ""
		}
		ui.renderForm(view)
		return true
	}

	switch key {
	case gocui.KeyBackspace, gocui.KeyBackspace2:
		runes := []rune(field.Value)
		if len(runes) > 0 {
			field.Value = string(runes[:len(runes)-1])
		}
	case gocui.KeySpace:
		field.Value += " "
	case gocui.KeyCtrlU:
		field.Value = ""
	}

	if ch != 0 && ch != '\n' && ch != '\r' && mod == 0 {
		field.Value += string(ch)
	}

	ui.renderForm(view)
	return true
}

func (u *UI) inputActive() bool {
	return u.form != nil || u.helpActive
}

func (u *UI) quit(_ *gocui.Gui, _ *gocui.View) error {
	return gocui.ErrQuit
}

func (u *UI) quitUnlessEditing(gui *gocui.Gui, view *gocui.View) error {
	if u.form != nil {
		return nil
	}
	if u.helpActive {
		return u.closeHelp(gui, view)
	}
	return gocui.ErrQuit
}

func helpText() string {
	return strings.Join([]string{
		"Navigation:",
		"  Tab cycle panes | 1 Overdue | 2 Pending | 3 Done",
		"  j/k or arrows move selection | mouse click to select",
		"",
		"Answering:",
		"  enter or a opens the answer form for the selected task",
		"  tab or arrows move between value and comment",
		"  y/n or space toggles yes/no answers",
		"  out of range numbers and No answers need a comment",
		"  enter saves | esc cancels",
		"",
		"Other:",
		"  r reload | ? help | esc close help | q quit",
	}, "\n")
}

func applyViewStyle(view *gocui.View, focused bool, highlight bool) {
	view.Frame = true
	view.Highlight = focused && highlight
	view.HighlightInactive = false
	view.SelBgColor = gocui.ColorBlue
	view.SelFgColor = gocui.ColorBlack
	view.InactiveViewSelBgColor = gocui.ColorDefault
	if focused {
		view.FrameColor = gocui.ColorCyan
	} else {
		view.FrameColor = gocui.ColorDefault
	}
}
