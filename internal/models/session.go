package models

import (
	"fmt"
	"hash/fnv"
	"sort"
)

// EnrollmentKind tags the Enrollment sum type.
type EnrollmentKind string

const (
	EnrollmentEmpty    EnrollmentKind = "EMPTY"
	EnrollmentStudent  EnrollmentKind = "STUDENT"
	EnrollmentStudents EnrollmentKind = "STUDENTS"
	EnrollmentPeer     EnrollmentKind = "PEER"
	EnrollmentGroups   EnrollmentKind = "GROUPS"
)

// Enrollment records who is enrolled in a session.
type Enrollment struct {
	Kind     EnrollmentKind `json:"kind"`
	Student  *Student       `json:"student,omitempty"`
	Students []Student      `json:"students,omitempty"`
	Peer     *PeerPair      `json:"peer,omitempty"`
	Groups   []Group        `json:"groups,omitempty"`
}

// EmptyEnrollment is the enrollment of a freshly generated session.
func EmptyEnrollment() Enrollment {
	return Enrollment{Kind: EnrollmentEmpty}
}

// StudentEnrollment enrolls a single student.
func StudentEnrollment(s Student) Enrollment {
	return Enrollment{Kind: EnrollmentStudent, Student: &s}
}

// StudentsEnrollment enrolls a set of students.
func StudentsEnrollment(students []Student) Enrollment {
	return Enrollment{Kind: EnrollmentStudents, Students: students}
}

// PeerEnrollment enrolls a bedside/peer pair.
func PeerEnrollment(bedside, peer Student) Enrollment {
	return Enrollment{Kind: EnrollmentPeer, Peer: &PeerPair{Bedside: bedside, Peer: peer}}
}

// GroupsEnrollment enrolls whole groups, used by the mandatory band.
func GroupsEnrollment(groups []Group) Enrollment {
	return Enrollment{Kind: EnrollmentGroups, Groups: groups}
}

// IsEmpty reports whether nothing is enrolled.
func (e Enrollment) IsEmpty() bool {
	return e.Kind == EnrollmentEmpty || e.Kind == ""
}

// EnrolledStudents flattens the enrollment into a student list.
func (e Enrollment) EnrolledStudents() []Student {
	switch e.Kind {
	case EnrollmentStudent:
		return []Student{*e.Student}
	case EnrollmentStudents:
		out := make([]Student, len(e.Students))
		copy(out, e.Students)
		return out
	case EnrollmentPeer:
		return []Student{e.Peer.Bedside, e.Peer.Peer}
	case EnrollmentGroups:
		var out []Student
		for _, g := range e.Groups {
			out = append(out, g.Students...)
		}
		return out
	}
	return nil
}

// Contains reports whether the student is enrolled.
func (e Enrollment) Contains(s Student) bool {
	for _, enrolled := range e.EnrolledStudents() {
		if enrolled == s {
			return true
		}
	}
	return false
}

// Size is the number of enrolled students.
func (e Enrollment) Size() int {
	return len(e.EnrolledStudents())
}

// Session is a concrete time-instance of an activity. The id is derived from
// the slot and the enrollable set, so two sessions with identical content
// compare equal across separately built schedules.
type Session struct {
	ID         string     `json:"id"`
	Slot       Timeslot   `json:"slot"`
	Enrollable []Student  `json:"enrollable"`
	Enrollment Enrollment `json:"enrollment"`
}

// NewSession builds an empty session with a deterministic id.
func NewSession(slot Timeslot, enrollable []Student) Session {
	return Session{
		ID:         sessionID(slot, enrollable),
		Slot:       slot,
		Enrollable: enrollable,
		Enrollment: EmptyEnrollment(),
	}
}

func sessionID(slot Timeslot, enrollable []Student) string {
	names := make([]string, len(enrollable))
	for i, s := range enrollable {
		names[i] = s.FullName()
	}
	sort.Strings(names)

	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%d|%d", slot.Date.Format("2006-01-02"), slot.Start, slot.End)
	for _, name := range names {
		fmt.Fprintf(h, "|%s", name)
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// WithEnrollment returns a copy of the session carrying the given enrollment.
func (s Session) WithEnrollment(e Enrollment) Session {
	s.Enrollment = e
	return s
}

// Equal compares sessions by id.
func (s Session) Equal(o Session) bool {
	return s.ID == o.ID
}

// CanEnroll reports whether the student belongs to the enrollable set.
func (s Session) CanEnroll(student Student) bool {
	for _, candidate := range s.Enrollable {
		if candidate == student {
			return true
		}
	}
	return false
}

// ActivitySessions pairs an activity with its ordered session list.
type ActivitySessions struct {
	Activity Activity  `json:"activity"`
	Sessions []Session `json:"sessions"`
}
