package main

import (
	"testing"
	"time"

	"roflexi/internal/client"
	"roflexi/internal/domain"
	"roflexi/internal/wizard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Defaults(t *testing.T) {
	cmd := rootCmd()

	server, err := cmd.Flags().GetString("server")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000", server)

	timeout, err := cmd.Flags().GetDuration("timeout")
	require.NoError(t, err)
	assert.Equal(t, client.DefaultTimeout, timeout)
	assert.Equal(t, 15*time.Second, timeout)

	lang, err := cmd.Flags().GetString("lang")
	require.NoError(t, err)
	assert.Equal(t, "ro", lang)
}

func TestSyncTags(t *testing.T) {
	m := wizard.New(domain.RoleProvider)
	m.ToggleTag("Curățenie")
	m.ToggleTag("Reparații")

	syncTags(m, []string{"Reparații", "Asistență IT"})
	assert.Equal(t, []string{"Reparații", "Asistență IT"}, m.Tags())

	syncTags(m, nil)
	assert.Empty(t, m.Tags())
}

func TestCoordinate(t *testing.T) {
	lat := coordinate(-90, 90)
	assert.NoError(t, lat("45.75"))
	assert.NoError(t, lat(" -90 "))
	assert.Error(t, lat("91"))
	assert.Error(t, lat("north"))
	assert.NoError(t, lat(""))
}

func TestApplyLocation(t *testing.T) {
	m := wizard.New(domain.RoleRequester)
	m.GoTo(wizard.StepLocation)

	assert.False(t, applyLocation(m, "", "", navNext))
	_, ok := m.Location()
	assert.False(t, ok)
	assert.Error(t, m.Next())
	assert.Equal(t, wizard.StepLocation, m.Step())

	assert.False(t, applyLocation(m, "45.7", "21.2", navBack))
	_, ok = m.Location()
	assert.False(t, ok)

	assert.True(t, applyLocation(m, " 45.7 ", "21.2", navNext))
	center, ok := m.Location()
	require.True(t, ok)
	assert.Equal(t, domain.GeoPoint{Lat: 45.7, Lng: 21.2}, center)
	assert.Len(t, m.ServiceArea(), 4)

	// unchanged coordinates keep the existing area
	assert.False(t, applyLocation(m, "45.7", "21.2", navNext))
	require.NoError(t, m.Next())
	assert.Equal(t, wizard.StepPhoto, m.Step())
}

func TestNavSelect_OffersSubmitOnlyOnLastStep(t *testing.T) {
	m := wizard.New(domain.RoleRequester)
	var nav navigation

	navSelect(m, &nav)
	assert.Equal(t, navNext, nav)

	m.GoTo(wizard.StepPhoto)
	navSelect(m, &nav)
	assert.Equal(t, navSubmit, nav)
}
