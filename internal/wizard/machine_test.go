package wizard

import (
	"testing"
	"time"

	"roflexi/internal/domain"
	"roflexi/internal/pkg/geofence"
	"roflexi/internal/pkg/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n")

func TestFlowFor(t *testing.T) {
	assert.Equal(t, []Step{StepPersonalInfo, StepTags, StepLocation, StepPhoto}, FlowFor(domain.RoleProvider))
	assert.Equal(t, []Step{StepPersonalInfo, StepLocation, StepPhoto}, FlowFor(domain.RoleRequester))
}

func TestMachine_StartsWithPlaceholders(t *testing.T) {
	m := New(domain.RoleProvider)
	assert.Equal(t, StepPersonalInfo, m.Step())
	assert.Equal(t, SampleForm(), m.Form)
	assert.False(t, m.IsTerminal())
}

func TestMachine_PersonalInfoGuard(t *testing.T) {
	m := New(domain.RoleRequester, WithLocalizer(NewLocalizer("ro")))
	m.Form.FullName = "  "
	m.Form.Age = "17"

	err := m.Next()
	var guard *GuardError
	require.ErrorAs(t, err, &guard)
	assert.Equal(t, validator.FieldFullName, guard.Field)
	assert.Equal(t, StepPersonalInfo, m.Step())

	notice, ok := m.Notices().Current()
	require.True(t, ok)
	assert.Equal(t, "Completați numele.", notice)

	m.Form.FullName = "Ana Pop"
	err = m.Next()
	require.ErrorAs(t, err, &guard)
	assert.Equal(t, "Trebuie să ai cel puțin 18 ani.", guard.Message)

	m.Form.Age = "18"
	require.NoError(t, m.Next())
	assert.Equal(t, StepLocation, m.Step())
}

func TestMachine_PhoneMessages(t *testing.T) {
	l := NewLocalizer("ro")
	f := SampleForm()

	f.Phone = ""
	_, msg, _ := f.FirstError(l)
	assert.Equal(t, "Introduceți un număr de telefon.", msg)

	f.Phone = "1234"
	_, msg, _ = f.FirstError(l)
	assert.Equal(t, "Numărul trebuie să conțină 9 cifre (fără prefix).", msg)
}

func TestMachine_TagsGuardAndToggle(t *testing.T) {
	m := New(domain.RoleProvider)
	require.NoError(t, m.Next())
	assert.Equal(t, StepTags, m.Step())

	assert.Error(t, m.Next())
	assert.Equal(t, StepTags, m.Step())

	assert.True(t, m.ToggleTag("Curățenie"))
	assert.True(t, m.ToggleTag("Reparații"))
	assert.False(t, m.ToggleTag("Curățenie"))
	assert.Equal(t, []string{"Reparații"}, m.Tags())

	require.NoError(t, m.Next())
	assert.Equal(t, StepLocation, m.Step())
}

func TestMachine_RequesterHasNoTags(t *testing.T) {
	m := New(domain.RoleRequester)
	assert.False(t, m.ToggleTag("Curățenie"))
	assert.Empty(t, m.Tags())
	assert.False(t, m.GoTo(StepTags))
}

func TestMachine_LocationGuardRecomputesArea(t *testing.T) {
	m := New(domain.RoleRequester)
	require.NoError(t, m.Next())

	err := m.Next()
	require.Error(t, err)
	assert.Equal(t, StepLocation, m.Step())

	center := domain.GeoPoint{Lat: 45.75, Lng: 21.23}
	m.PickLocation(center)
	assert.Equal(t, geofence.DefaultSquare(center), m.ServiceArea())

	// a new center drops the old corners until they are recomputed
	moved := domain.GeoPoint{Lat: 46, Lng: 22}
	m.SetLocation(moved)
	assert.Empty(t, m.ServiceArea())

	require.NoError(t, m.Next())
	assert.Equal(t, StepPhoto, m.Step())
	assert.Equal(t, geofence.DefaultSquare(moved), m.ServiceArea())
	assert.True(t, m.IsTerminal())
}

func TestMachine_BackNeverValidates(t *testing.T) {
	m := New(domain.RoleProvider)
	require.NoError(t, m.Next())
	m.Form.Password = "x"

	assert.True(t, m.Back())
	assert.Equal(t, StepPersonalInfo, m.Step())
	assert.False(t, m.Back())
}

func TestMachine_PrepareSubmissionOrder(t *testing.T) {
	m := New(domain.RoleProvider, WithLocalizer(NewLocalizer("en")))
	m.GoTo(StepPhoto)
	m.Form.Password = "ab"

	_, err := m.PrepareSubmission()
	require.Error(t, err)
	assert.Equal(t, string(MsgMissingImage), err.Error())
	assert.Equal(t, StepPhoto, m.Step())

	require.NoError(t, m.SetImage("me.png", "image/png", pngBytes))
	_, err = m.PrepareSubmission()
	require.Error(t, err)
	assert.Equal(t, string(MsgMissingTags), err.Error())
	assert.Equal(t, StepTags, m.Step())

	m.ToggleTag("Curățenie")
	_, err = m.PrepareSubmission()
	require.Error(t, err)
	assert.Equal(t, string(MsgWeakPassword), err.Error())
	assert.Equal(t, StepPersonalInfo, m.Step())

	m.Form.Password = "secret1"
	_, err = m.PrepareSubmission()
	require.Error(t, err)
	assert.Equal(t, string(MsgMissingLocation), err.Error())
	assert.Equal(t, StepLocation, m.Step())

	m.SetLocation(domain.GeoPoint{Lat: 45.75, Lng: 21.23})
	sub, err := m.PrepareSubmission()
	require.NoError(t, err)
	assert.Len(t, sub.ServiceArea, 4)
	assert.Equal(t, []string{"Curățenie"}, sub.Tags)
	assert.Equal(t, "me.png", sub.Image.Filename)
}

func TestMachine_SetImageRejectsAndKeepsPrevious(t *testing.T) {
	m := New(domain.RoleRequester, WithLocalizer(NewLocalizer("ro")))
	require.NoError(t, m.SetImage("a.HEIC", "", []byte{1}))

	err := m.SetImage("cv.pdf", "application/pdf", []byte{1})
	assert.ErrorIs(t, err, ErrInvalidImage)
	assert.Equal(t, "a.HEIC", m.Image().Filename)

	notice, _ := m.Notices().Current()
	assert.Equal(t, "Fișier invalid. Selectează o imagine.", notice)

	err = m.SetImage("big.png", "image/png", make([]byte, MaxImageBytes+1))
	assert.ErrorIs(t, err, ErrImageTooLarge)
	notice, _ = m.Notices().Current()
	assert.Equal(t, "Imaginea depășește 5 MB.", notice)
}

func TestMachine_Reset(t *testing.T) {
	m := New(domain.RoleProvider)
	m.ToggleTag("Curățenie")
	m.PickLocation(DefaultCenter)
	m.GoTo(StepPhoto)
	m.Form.FullName = "Someone"

	m.Reset()
	assert.Equal(t, StepPersonalInfo, m.Step())
	assert.Equal(t, SampleForm(), m.Form)
	assert.Empty(t, m.Tags())
	_, ok := m.Location()
	assert.False(t, ok)
}

func TestBoard_AutoDismiss(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b := NewBoard()
	b.now = func() time.Time { return now }

	b.Show("first")
	now = now.Add(2 * time.Second)
	b.Show("second")

	now = now.Add(2 * time.Second)
	text, ok := b.Current()
	require.True(t, ok)
	assert.Equal(t, "second", text)

	now = now.Add(time.Second)
	_, ok = b.Current()
	assert.False(t, ok)
}
