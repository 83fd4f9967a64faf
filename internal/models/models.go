package models

// All lists every persisted model in dependency order for migrations.
func All() []interface{} {
	return []interface{}{
		&Department{},
		&User{},
		&Test{},
		&Question{},
		&CandidateTest{},
		&Answer{},
		&Result{},
		&TestInvitation{},
		&ProctoringEvent{},
		&ActivityLog{},
	}
}
