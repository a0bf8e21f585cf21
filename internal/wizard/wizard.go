package wizard

import (
	"strconv"
	"sync"
	"time"
)

// Status is the submission state of a wizard session. Failed is not terminal:
// the session stays in place and the user may retry without re-entering data.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusValidating Status = "validating"
	StatusSubmitting Status = "submitting"
	StatusFailed     Status = "failed"
	StatusSucceeded  Status = "succeeded"
)

// Values is the accumulated field bag for a flow. Multi-select fields are
// stored as []string and mutated through Toggle.
type Values map[string]any

// StepValidator checks one step's fields. It returns human-readable messages
// and never errors out-of-band; validation is purely local and synchronous.
type StepValidator func(v Values) []string

// Step is one screen of a flow.
type Step struct {
	Name     string
	Validate StepValidator
}

// Flow declares a wizard as data: ordered steps plus initial values. The same
// engine drives onboarding and property-listing forms; flows differ only in
// their declarations.
type Flow struct {
	Name    string
	Steps   []Step
	Initial func() Values
}

// Session is one in-progress run of a flow. Current is 1-based and always in
// [1, len(Steps)]. Sessions are transient: they live in the Store until
// submitted or swept. The Store hands the same pointer to every request for a
// user+flow, so all mutators serialize on mu; two tabs writing the same field
// resolve last-write-wins.
type Session struct {
	mu sync.Mutex

	Flow      *Flow    `json:"-"`
	FlowName  string   `json:"flow"`
	Current   int      `json:"current_step"`
	Total     int      `json:"total_steps"`
	Values    Values   `json:"values"`
	Errors    []string `json:"errors,omitempty"`
	Status    Status   `json:"status"`
	UpdatedAt time.Time `json:"-"`
}

func NewSession(f *Flow) *Session {
	vals := Values{}
	if f.Initial != nil {
		vals = f.Initial()
	}
	return &Session{
		Flow:      f,
		FlowName:  f.Name,
		Current:   1,
		Total:     len(f.Steps),
		Values:    vals,
		Status:    StatusIdle,
		UpdatedAt: time.Now(),
	}
}

// Set records a single field value on the session.
func (s *Session) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Values[key] = value
	s.touch()
}

// Toggle flips membership of value in the named string collection: present is
// removed, absent is appended. Calling it twice with the same value restores
// the collection. Used for amenities, goals and channel multi-selects.
func (s *Session) Toggle(collectionKey, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.Values.Strings(collectionKey)
	for i, existing := range current {
		if existing == value {
			s.Values[collectionKey] = append(current[:i:i], current[i+1:]...)
			s.touch()
			return
		}
	}
	s.Values[collectionKey] = append(current, value)
	s.touch()
}

// ValidateStep runs the declared validator for the 1-based step index.
func (s *Session) ValidateStep(index int) (bool, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validateStep(index)
}

func (s *Session) validateStep(index int) (bool, []string) {
	if index < 1 || index > s.Total {
		return false, []string{"unknown step"}
	}
	step := s.Flow.Steps[index-1]
	if step.Validate == nil {
		return true, nil
	}
	errs := step.Validate(s.Values)
	return len(errs) == 0, errs
}

// ValidateAll aggregates validation across every step. Submit-time checks use
// this so an invalid earlier step cannot slip through.
func (s *Session) ValidateAll() (bool, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validateAll()
}

func (s *Session) validateAll() (bool, []string) {
	var all []string
	for i := 1; i <= s.Total; i++ {
		if ok, errs := s.validateStep(i); !ok {
			all = append(all, errs...)
		}
	}
	return len(all) == 0, all
}

// Next advances to the following step if the current one validates. On
// failure the step index is unchanged and Errors is populated; no error is
// ever thrown past this boundary.
func (s *Session) Next() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Status = StatusValidating
	ok, errs := s.validateStep(s.Current)
	if !ok {
		s.Errors = errs
		s.Status = StatusIdle
		s.touch()
		return false
	}
	s.Errors = nil
	if s.Current < s.Total {
		s.Current++
	}
	s.Status = StatusIdle
	s.touch()
	return true
}

// Prev always succeeds above step 1. Moving backward never validates and
// never clears entered data.
func (s *Session) Prev() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Current <= 1 {
		return false
	}
	s.Current--
	s.Errors = nil
	s.touch()
	return true
}

// OnFinalStep reports whether Submit is reachable.
func (s *Session) OnFinalStep() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Current == s.Total
}

// BeginSubmit gates submission: only reachable from the final step and only
// when every step validates. It flips the session into Submitting; the caller
// runs the flow-specific pipeline and then calls Succeed or Fail.
func (s *Session) BeginSubmit() (bool, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Current != s.Total {
		return false, []string{"submission is only available from the final step"}
	}
	s.Status = StatusValidating
	ok, errs := s.validateAll()
	if !ok {
		s.Errors = errs
		s.Status = StatusIdle
		s.touch()
		return false, errs
	}
	s.Errors = nil
	s.Status = StatusSubmitting
	s.touch()
	return true, nil
}

// Fail records a submission failure without resetting any entered values, so
// the user can retry in place.
func (s *Session) Fail(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Errors = []string{message}
	s.Status = StatusFailed
	s.touch()
}

func (s *Session) Succeed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Errors = nil
	s.Status = StatusSucceeded
	s.touch()
}

// Snapshot returns a detached copy safe to read and serialize while other
// requests keep mutating the live session.
func (s *Session) Snapshot() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	vals := make(Values, len(s.Values))
	for k, v := range s.Values {
		vals[k] = v
	}
	return &Session{
		Flow:      s.Flow,
		FlowName:  s.FlowName,
		Current:   s.Current,
		Total:     s.Total,
		Values:    vals,
		Errors:    append([]string(nil), s.Errors...),
		Status:    s.Status,
		UpdatedAt: s.UpdatedAt,
	}
}

// LastUpdated reads the activity timestamp; used by the store's sweeper,
// which runs off a cron goroutine.
func (s *Session) LastUpdated() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.UpdatedAt
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now()
}

// String reads a field as a string, empty when unset.
func (v Values) String(key string) string {
	if s, ok := v[key].(string); ok {
		return s
	}
	return ""
}

// Bool reads a field as a bool, false when unset.
func (v Values) Bool(key string) bool {
	b, _ := v[key].(bool)
	return b
}

// Strings reads a multi-select field. JSON round-trips deliver []any, so both
// shapes are accepted.
func (v Values) Strings(key string) []string {
	switch val := v[key].(type) {
	case []string:
		return val
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}

// Number reads a numeric field. Invalid or empty input parses to 0 rather
// than rejecting the keystroke; validators then report 0 as out of range
// where a positive value is required.
func (v Values) Number(key string) float64 {
	switch val := v[key].(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		n, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0
		}
		return n
	}
	return 0
}

// Int reads a numeric field truncated to an int, with the same
// parse-to-zero policy as Number.
func (v Values) Int(key string) int {
	return int(v.Number(key))
}
