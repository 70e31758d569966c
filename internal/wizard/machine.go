// Package wizard is the client-side registration flow: a linear sequence of
// steps with guards, the form it edits and the notices it raises.
package wizard

import (
	"fmt"

	"roflexi/internal/domain"
	"roflexi/internal/pkg/geofence"
	"roflexi/internal/pkg/validator"
)

type Step int

const (
	StepPersonalInfo Step = iota + 1
	StepTags
	StepLocation
	StepPhoto
)

func (s Step) String() string {
	switch s {
	case StepPersonalInfo:
		return "personal-info"
	case StepTags:
		return "tags"
	case StepLocation:
		return "location"
	case StepPhoto:
		return "photo"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// FlowFor returns the ordered steps of a role.
func FlowFor(role domain.Role) []Step {
	if role == domain.RoleProvider {
		return []Step{StepPersonalInfo, StepTags, StepLocation, StepPhoto}
	}
	return []Step{StepPersonalInfo, StepLocation, StepPhoto}
}

// DefaultCenter is where the map opens before a point is picked.
var DefaultCenter = domain.GeoPoint{Lat: 45.75372, Lng: 21.22571}

// GuardError explains why the wizard refused to move on.
type GuardError struct {
	Step    Step
	Field   validator.Field
	Message string
}

func (e *GuardError) Error() string { return e.Message }

// Submission is everything the orchestrator sends, captured at the moment
// the user confirmed.
type Submission struct {
	Role        domain.Role
	Form        Form
	Tags        []string
	Location    domain.GeoPoint
	ServiceArea []domain.GeoPoint
	Image       *Image
}

// Machine is the in-memory wizard state of one registration. It is not
// safe for concurrent use.
type Machine struct {
	role domain.Role
	flow []Step
	pos  int

	Form        Form
	tags        *TagSet
	location    *domain.GeoPoint
	serviceArea []domain.GeoPoint
	image       *Image
	halfSideKm  float64

	notices *Board
	lang    *Localizer
}

type Option func(*Machine)

func WithLocalizer(l *Localizer) Option {
	return func(m *Machine) { m.lang = l }
}

func WithBoard(b *Board) Option {
	return func(m *Machine) { m.notices = b }
}

func WithHalfSideKm(km float64) Option {
	return func(m *Machine) { m.halfSideKm = km }
}

func New(role domain.Role, opts ...Option) *Machine {
	m := &Machine{
		role:       role,
		flow:       FlowFor(role),
		halfSideKm: geofence.DefaultHalfSideKm,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.lang == nil {
		m.lang = NewLocalizer("")
	}
	if m.notices == nil {
		m.notices = NewBoard()
	}
	m.Reset()
	return m
}

// Reset returns to the first step with placeholder values.
func (m *Machine) Reset() {
	m.pos = 0
	m.Form = SampleForm()
	m.tags = NewTagSet()
	m.location = nil
	m.serviceArea = nil
	m.image = nil
}

func (m *Machine) Role() domain.Role { return m.role }
func (m *Machine) Step() Step { return m.flow[m.pos] }
func (m *Machine) Flow() []Step { return append([]Step(nil), m.flow...) }
func (m *Machine) Notices() *Board { return m.notices }
func (m *Machine) Localizer() *Localizer { return m.lang }

// IsTerminal reports whether the current step is the last one.
func (m *Machine) IsTerminal() bool { return m.pos == len(m.flow)-1 }

// Next advances one step if the current step's guard passes. On refusal
// the first problem is shown as a notice and returned.
func (m *Machine) Next() error {
	if err := m.guard(m.Step()); err != nil {
		m.notices.Show(err.Message)
		return err
	}
	if !m.IsTerminal() {
		m.pos++
	}
	return nil
}

// Back moves one step backwards without validating anything. It reports
// whether the step changed.
func (m *Machine) Back() bool {
	if m.pos == 0 {
		return false
	}
	m.pos--
	return true
}

// GoTo jumps to step if it belongs to this flow.
func (m *Machine) GoTo(step Step) bool {
	for i, s := range m.flow {
		if s == step {
			m.pos = i
			return true
		}
	}
	return false
}

func (m *Machine) guard(step Step) *GuardError {
	switch step {
	case StepPersonalInfo:
		if field, msg, bad := m.Form.FirstError(m.lang); bad {
			return &GuardError{Step: step, Field: field, Message: msg}
		}
	case StepTags:
		if m.tags.Len() == 0 {
			return &GuardError{Step: step, Field: validator.FieldTags, Message: m.lang.Text(MsgMissingTags)}
		}
	case StepLocation:
		if m.location == nil {
			return &GuardError{Step: step, Field: validator.FieldLocation, Message: m.lang.Text(MsgPickLocationFirst)}
		}
		m.ensureServiceArea()
	}
	return nil
}

// PickLocation sets the center and recomputes the service area around it.
func (m *Machine) PickLocation(center domain.GeoPoint) {
	c := center
	m.location = &c
	m.serviceArea = geofence.Square(c, m.halfSideKm)
}

// SetLocation sets the center without computing the area. Any previous
// area is dropped so corners of an older center are never kept.
func (m *Machine) SetLocation(center domain.GeoPoint) {
	c := center
	m.location = &c
	m.serviceArea = nil
}

func (m *Machine) ensureServiceArea() {
	if m.location != nil && len(m.serviceArea) == 0 {
		m.serviceArea = geofence.Square(*m.location, m.halfSideKm)
	}
}

func (m *Machine) Location() (domain.GeoPoint, bool) {
	if m.location == nil {
		return domain.GeoPoint{}, false
	}
	return *m.location, true
}

func (m *Machine) ServiceArea() []domain.GeoPoint {
	return append([]domain.GeoPoint(nil), m.serviceArea...)
}

// SetImage validates and stores the picked image. A rejected file leaves
// the previous image in place.
func (m *Machine) SetImage(filename, contentType string, data []byte) error {
	img, err := NewImage(filename, contentType, data)
	if err != nil {
		m.notices.Show(m.imageMessage(err))
		return err
	}
	m.image = img
	return nil
}

// UseImage stores an image that was already accepted by NewImage or LoadImage.
func (m *Machine) UseImage(img *Image) { m.image = img }

func (m *Machine) ClearImage() { m.image = nil }

func (m *Machine) Image() *Image { return m.image }

func (m *Machine) imageMessage(err error) string {
	switch err {
	case ErrImageTooLarge:
		return m.lang.Text(MsgImageTooLarge, MaxImageBytes>>20)
	case ErrInvalidImage:
		return m.lang.Text(MsgInvalidImage)
	}
	return m.lang.Text(MsgImageUnreadable)
}

// ToggleTag selects or deselects a tag. Requesters have no tags.
func (m *Machine) ToggleTag(tag string) bool {
	if m.role != domain.RoleProvider {
		return false
	}
	return m.tags.Toggle(tag)
}

func (m *Machine) Tags() []string { return m.tags.Values() }

// PrepareSubmission checks, in order, image, tags, personal info and
// location. The first failure is shown, the wizard is moved to the step
// that can fix it, and the failure is returned.
func (m *Machine) PrepareSubmission() (*Submission, error) {
	if err := m.checkSubmission(); err != nil {
		m.notices.Show(err.Message)
		if err.Step != StepPhoto {
			m.GoTo(err.Step)
		}
		return nil, err
	}

	m.ensureServiceArea()
	sub := &Submission{
		Role:        m.role,
		Form:        m.Form,
		Location:    *m.location,
		ServiceArea: m.ServiceArea(),
		Image:       m.image,
	}
	if m.role == domain.RoleProvider {
		sub.Tags = m.tags.Values()
	}
	return sub, nil
}

func (m *Machine) checkSubmission() *GuardError {
	if m.image == nil {
		return &GuardError{Step: StepPhoto, Field: validator.FieldProfileImage, Message: m.lang.Text(MsgMissingImage)}
	}
	if m.role == domain.RoleProvider && m.tags.Len() == 0 {
		return &GuardError{Step: StepTags, Field: validator.FieldTags, Message: m.lang.Text(MsgMissingTags)}
	}
	if field, msg, bad := m.Form.FirstError(m.lang); bad {
		return &GuardError{Step: StepPersonalInfo, Field: field, Message: msg}
	}
	if m.location == nil {
		return &GuardError{Step: StepLocation, Field: validator.FieldLocation, Message: m.lang.Text(MsgMissingLocation)}
	}
	return nil
}
