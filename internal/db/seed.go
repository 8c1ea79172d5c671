package db

import "github.com/Joseda-hg/kitchencheck/internal/model"

// DefaultTasks are the daily checks a new kitchen starts with.
func DefaultTasks() []TaskInput {
	return []TaskInput{
		numberTask("Fridge temperature check", "Check and record the main fridge temperature. Should be between 0-5°C.", "09:00", 0, 5),
		numberTask("Freezer temperature check", "Check and record the freezer temperature. Should be between -22°C and -18°C.", "09:00", -22, -18),
		numberTask("Hot hold temperature check", "Check hot held food is above 63°C. Record the temperature.", "12:00", 63, 100),
		booleanTask("Delivery inspection", "Inspect all deliveries for damage, temperature, and best before dates.", "07:00"),
		booleanTask("Handwash station stocked", "Ensure handwash stations have soap, paper towels, and sanitiser.", "08:00"),
		booleanTask("Cleaning checklist complete", "Confirm all cleaning tasks for the day have been completed.", "22:00"),
		booleanTask("Allergen labels checked", "Verify all food items are correctly labelled with allergen information.", "10:00"),
		booleanTask("Waste disposal completed", "Confirm all waste has been properly disposed of and bins are clean.", "22:00"),
	}
}

func numberTask(title, description, at string, lower, upper float64) TaskInput {
	return TaskInput{
		Title:        title,
		Description:  description,
		InputType:    model.InputNumber,
		ScheduleType: "daily",
		Time:         at,
		RangeMin:     &lower,
		RangeMax:     &upper,
		AssignedRole: model.RoleStaff,
	}
}

func booleanTask(title, description, at string) TaskInput {
	return TaskInput{
		Title:        title,
		Description:  description,
		InputType:    model.InputBoolean,
		ScheduleType: "daily",
		Time:         at,
		AssignedRole: model.RoleStaff,
	}
}
