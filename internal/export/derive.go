package export

import (
	"math"
	"sort"
	"strings"

	"github.com/me/sked/pkg/model"
)

// advancedKeywords mark a course as advanced when found in its name or code.
var advancedKeywords = []string{
	"AP", "HONORS", "IB", "ADVANCED PLACEMENT", "ACCELERATED",
}

// specialEdKeywords mark a course as special education when found in its
// name, code, or subject.
var specialEdKeywords = []string{
	"SPECIAL ED", "SPED", "RESOURCE", "INCLUSION", "LIFE SKILLS", "SE", "SPECIAL",
}

// certificationTable maps subject keywords to the certification code a
// teacher must hold to be assigned that subject. The same table drives
// course requirements and teacher qualification in both directions, so
// changing an entry changes both sides consistently.
var certificationTable = map[string]string{
	"MATH":               "MATHEMATICS",
	"ALGEBRA":            "MATHEMATICS",
	"GEOMETRY":           "MATHEMATICS",
	"CALCULUS":           "MATHEMATICS",
	"ENGLISH":            "ENGLISH",
	"ELA":                "ENGLISH",
	"LITERATURE":         "ENGLISH",
	"SCIENCE":            "SCIENCE",
	"BIOLOGY":            "SCIENCE",
	"CHEMISTRY":          "SCIENCE",
	"PHYSICS":            "SCIENCE",
	"HISTORY":            "SOCIAL_STUDIES",
	"SOCIAL STUDIES":     "SOCIAL_STUDIES",
	"GOVERNMENT":         "SOCIAL_STUDIES",
	"ECONOMICS":          "SOCIAL_STUDIES",
	"SPANISH":            "WORLD_LANGUAGES",
	"FRENCH":             "WORLD_LANGUAGES",
	"GERMAN":             "WORLD_LANGUAGES",
	"LATIN":              "WORLD_LANGUAGES",
	"ART":                "FINE_ARTS",
	"MUSIC":              "FINE_ARTS",
	"BAND":               "FINE_ARTS",
	"CHORUS":             "FINE_ARTS",
	"DRAMA":              "FINE_ARTS",
	"PHYSICAL EDUCATION": "PHYSICAL_EDUCATION",
	"PE":                 "PHYSICAL_EDUCATION",
	"HEALTH":             "PHYSICAL_EDUCATION",
	"COMPUTER":           "COMPUTER_SCIENCE",
	"PROGRAMMING":        "COMPUTER_SCIENCE",
	"TECHNOLOGY":         "TECHNOLOGY",
	"ENGINEERING":        "TECHNOLOGY",
	"BUSINESS":           "BUSINESS",
}

// roomTypeDepartments maps a room type to the departments it serves.
var roomTypeDepartments = map[string][]string{
	"SCIENCE_LAB":  {"SCIENCE"},
	"COMPUTER_LAB": {"COMPUTER_SCIENCE", "TECHNOLOGY"},
	"GYM":          {"PHYSICAL_EDUCATION"},
	"ART_ROOM":     {"FINE_ARTS"},
	"MUSIC_ROOM":   {"FINE_ARTS"},
	"AUDITORIUM":   {"FINE_ARTS"},
	"SHOP":         {"TECHNOLOGY"},
}

// roomNameDepartments maps keywords found in a room's display name or
// number to a department.
var roomNameDepartments = map[string]string{
	"SCIENCE":  "SCIENCE",
	"LAB":      "SCIENCE",
	"COMPUTER": "COMPUTER_SCIENCE",
	"TECH":     "TECHNOLOGY",
	"GYM":      "PHYSICAL_EDUCATION",
	"ART":      "FINE_ARTS",
	"MUSIC":    "FINE_ARTS",
	"BAND":     "FINE_ARTS",
}

// weekdayCodes maps weekday names to the optimizer's 1-7 encoding.
var weekdayCodes = map[string]int{
	"MONDAY":    1,
	"TUESDAY":   2,
	"WEDNESDAY": 3,
	"THURSDAY":  4,
	"FRIDAY":    5,
	"SATURDAY":  6,
	"SUNDAY":    7,
}

// sectionsNeeded sizes a course from its demand: ceil(demand / maxPerSection),
// never below 1 for an active course even with zero demand.
func sectionsNeeded(demand, maxPerSection int, active bool) int {
	if !active {
		return 0
	}
	if demand <= 0 || maxPerSection <= 0 {
		return 1
	}
	n := int(math.Ceil(float64(demand) / float64(maxPerSection)))
	if n < 1 {
		n = 1
	}
	return n
}

// isAdvanced reports whether the course name or code carries an
// advanced-course keyword.
func isAdvanced(name, code string) bool {
	return containsAnyKeyword(advancedKeywords, name, code)
}

// isSpecialEducation reports whether the course name, code, or subject
// carries a special-education keyword.
func isSpecialEducation(name, code, subject string) bool {
	return containsAnyKeyword(specialEdKeywords, name, code, subject)
}

// requiredCertifications derives the certification codes a teacher needs
// for a course from its subject, appending SPECIAL_ED for special
// education courses.
func requiredCertifications(subject string, specialEd bool) []string {
	certs := make(map[string]bool)
	upper := strings.ToUpper(subject)
	for keyword, code := range certificationTable {
		if matchKeyword(upper, keyword) {
			certs[code] = true
		}
	}
	if specialEd {
		certs["SPECIAL_ED"] = true
	}
	return sortedKeys(certs)
}

// coursePriority assigns the scheduling priority tier. Lower is more
// urgent; the first matching rule wins.
func coursePriority(coreRequired, advanced bool, demand int, specialEd bool) int {
	switch {
	case coreRequired:
		return 1
	case advanced:
		return 2
	case demand > 100:
		return 3
	case specialEd:
		return 4
	default:
		return 5
	}
}

// teacherCertificationSet expands a teacher's held certifications.
// Certification strings come in both forms: already-normalized codes
// ("MATHEMATICS") and keyword forms ("MATH"), so each string is kept
// literal and also mapped through the table. The department name is
// matched against the table keywords the same way.
func teacherCertificationSet(t *model.Teacher) map[string]bool {
	held := make(map[string]bool)
	for _, cert := range t.Certifications {
		upper := strings.ToUpper(strings.TrimSpace(cert))
		held[upper] = true
		for keyword, code := range certificationTable {
			if matchKeyword(upper, keyword) {
				held[code] = true
			}
		}
	}
	dept := strings.ToUpper(t.Department)
	for keyword, code := range certificationTable {
		if matchKeyword(dept, keyword) {
			held[code] = true
		}
	}
	return held
}

// qualifiedCourseIDs returns the IDs of the courses a teacher may be
// assigned: any course whose required certifications intersect the
// teacher's expanded certification set. Courses that require no
// certification are open to everyone.
func qualifiedCourseIDs(t *model.Teacher, courses []courseDerivation) []string {
	held := teacherCertificationSet(t)

	var ids []string
	for _, c := range courses {
		if len(c.RequiredCertifications) == 0 {
			ids = append(ids, c.Course.ID)
			continue
		}
		for _, req := range c.RequiredCertifications {
			if held[req] {
				ids = append(ids, c.Course.ID)
				break
			}
		}
	}
	return ids
}

// roomDepartments derives the departments a room serves from its type,
// unioned with keyword matches against its display name and number.
func roomDepartments(r *model.Room) []string {
	depts := make(map[string]bool)
	for _, d := range roomTypeDepartments[strings.ToUpper(r.Type)] {
		depts[d] = true
	}

	display := strings.ToUpper(r.Name + " " + r.Number)
	for keyword, dept := range roomNameDepartments {
		if strings.Contains(display, keyword) {
			depts[dept] = true
		}
	}
	return sortedKeys(depts)
}

// dayOfWeekCode converts a comma-separated weekday list to the
// optimizer's encoding: 0 for every weekday, 1-7 for a single day. Any
// multi-day list collapses to 0, including partial weekday sets; this
// lossy collapse is load-bearing for existing fixtures and must not be
// "fixed" to something smarter.
func dayOfWeekCode(daysOfWeek string) int {
	var days []int
	for _, part := range strings.Split(daysOfWeek, ",") {
		name := strings.ToUpper(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		if code, ok := weekdayCodes[name]; ok {
			days = append(days, code)
		}
	}

	if len(days) == 1 {
		return days[0]
	}
	return 0
}

func containsAnyKeyword(keywords []string, fields ...string) bool {
	for _, f := range fields {
		upper := strings.ToUpper(f)
		for _, kw := range keywords {
			if matchKeyword(upper, kw) {
				return true
			}
		}
	}
	return false
}

// matchKeyword matches a keyword within an upper-cased field. Two-letter
// codes (AP, IB, SE, PE) match only as whole tokens; a substring check
// would flag words like GRAPHICS or COURSE.
func matchKeyword(upperField, keyword string) bool {
	if len(keyword) > 2 {
		return strings.Contains(upperField, keyword)
	}
	for _, tok := range strings.FieldsFunc(upperField, func(r rune) bool {
		return !('A' <= r && r <= 'Z') && !('0' <= r && r <= '9')
	}) {
		if tok == keyword {
			return true
		}
	}
	return false
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
