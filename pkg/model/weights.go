package model

// ConstraintWeights are the relative weights the optimizer applies to
// each constraint family. They are independent positive integers, not
// percentages, and are not required to sum to anything.
type ConstraintWeights struct {
	TeacherConflict      int `json:"teacher_conflict" yaml:"teacher_conflict"`
	RoomConflict         int `json:"room_conflict" yaml:"room_conflict"`
	StudentConflict      int `json:"student_conflict" yaml:"student_conflict"`
	RoomCapacity         int `json:"room_capacity" yaml:"room_capacity"`
	TeacherQualification int `json:"teacher_qualification" yaml:"teacher_qualification"`
	TeacherMaxLoad       int `json:"teacher_max_load" yaml:"teacher_max_load"`
	RoomTypePreference   int `json:"room_type_preference" yaml:"room_type_preference"`
	SectionBalance       int `json:"section_balance" yaml:"section_balance"`
	StudentPreference    int `json:"student_preference" yaml:"student_preference"`
	LunchCoverage        int `json:"lunch_coverage" yaml:"lunch_coverage"`
}

// DefaultConstraintWeights returns the stock weighting used when no
// weights file is configured.
func DefaultConstraintWeights() ConstraintWeights {
	return ConstraintWeights{
		TeacherConflict:      100,
		RoomConflict:         100,
		StudentConflict:      80,
		RoomCapacity:         60,
		TeacherQualification: 90,
		TeacherMaxLoad:       40,
		RoomTypePreference:   20,
		SectionBalance:       15,
		StudentPreference:    10,
		LunchCoverage:        30,
	}
}

// Valid returns false if any weight is zero or negative.
func (w ConstraintWeights) Valid() bool {
	for _, v := range []int{
		w.TeacherConflict, w.RoomConflict, w.StudentConflict,
		w.RoomCapacity, w.TeacherQualification, w.TeacherMaxLoad,
		w.RoomTypePreference, w.SectionBalance, w.StudentPreference,
		w.LunchCoverage,
	} {
		if v <= 0 {
			return false
		}
	}
	return true
}
