package models

// All returns every persisted model, in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Task{},
		&Note{},
		&FocusSession{},
		&Habit{},
		&DailyActivity{},
		&UserAchievement{},
		&BudgetSheet{},
		&BudgetRow{},
	}
}
