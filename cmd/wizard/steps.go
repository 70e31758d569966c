package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/google/uuid"

	"roflexi/internal/domain"
	"roflexi/internal/pkg/validator"
	"roflexi/internal/wizard"
)

type navigation string

const (
	navNext   navigation = "next"
	navBack   navigation = "back"
	navSubmit navigation = "submit"
)

func newIdempotencyKey() string {
	return uuid.NewString()
}

func navSelect(m *wizard.Machine, nav *navigation) *huh.Select[navigation] {
	opts := []huh.Option[navigation]{}
	if m.IsTerminal() {
		opts = append(opts, huh.NewOption("Submit", navSubmit))
	} else {
		opts = append(opts, huh.NewOption("Continue", navNext))
	}
	if m.Step() != m.Flow()[0] {
		opts = append(opts, huh.NewOption("Back", navBack))
	}
	*nav = opts[0].Value
	return huh.NewSelect[navigation]().Options(opts...).Value(nav)
}

func runStep(ctx context.Context, m *wizard.Machine) (navigation, error) {
	switch m.Step() {
	case wizard.StepPersonalInfo:
		return personalInfoStep(ctx, m)
	case wizard.StepTags:
		return tagsStep(ctx, m)
	case wizard.StepLocation:
		return locationStep(ctx, m)
	case wizard.StepPhoto:
		return photoStep(ctx, m)
	}
	return "", fmt.Errorf("unknown step %s", m.Step())
}

func personalInfoStep(ctx context.Context, m *wizard.Machine) (navigation, error) {
	var nav navigation
	f := &m.Form

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Full name").Value(&f.FullName),
			huh.NewInput().Title("Email").Value(&f.Email),
			huh.NewInput().Title("Age").Value(&f.Age),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&f.Password),
			huh.NewInput().
				Title("Phone").
				Description(fmt.Sprintf("%d digits, without the country prefix", validator.PhoneDigits)).
				Value(&f.Phone),
			navSelect(m, &nav),
		).Title("Personal information"),
	).RunWithContext(ctx)
	if err != nil {
		return "", err
	}
	f.SetPhone(f.Phone)
	return nav, nil
}

func tagsStep(ctx context.Context, m *wizard.Machine) (navigation, error) {
	var nav navigation
	selected := m.Tags()
	var custom string

	vocabulary := append([]string(nil), wizard.PopularTags...)
	for _, t := range selected {
		if !contains(vocabulary, t) {
			vocabulary = append(vocabulary, t)
		}
	}

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Services you offer").
				Options(huh.NewOptions(vocabulary...)...).
				Filterable(true).
				Value(&selected),
			huh.NewInput().
				Title("Other services").
				Description("Comma-separated, optional").
				Value(&custom),
			navSelect(m, &nav),
		).Title("Tags"),
	).RunWithContext(ctx)
	if err != nil {
		return "", err
	}

	for _, t := range strings.Split(custom, ",") {
		if t = strings.TrimSpace(t); t != "" && !contains(selected, t) {
			selected = append(selected, t)
		}
	}
	syncTags(m, selected)
	return nav, nil
}

// syncTags toggles the machine's tags until they match selected.
func syncTags(m *wizard.Machine, selected []string) {
	for _, t := range m.Tags() {
		if !contains(selected, t) {
			m.ToggleTag(t)
		}
	}
	current := m.Tags()
	for _, t := range selected {
		if !contains(current, t) {
			m.ToggleTag(t)
		}
	}
}

func locationStep(ctx context.Context, m *wizard.Machine) (navigation, error) {
	var nav navigation
	var lat, lng string
	if center, ok := m.Location(); ok {
		lat = strconv.FormatFloat(center.Lat, 'f', -1, 64)
		lng = strconv.FormatFloat(center.Lng, 'f', -1, 64)
	}

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Latitude").
				Placeholder(strconv.FormatFloat(wizard.DefaultCenter.Lat, 'f', -1, 64)).
				Value(&lat).
				Validate(coordinate(-90, 90)),
			huh.NewInput().
				Title("Longitude").
				Placeholder(strconv.FormatFloat(wizard.DefaultCenter.Lng, 'f', -1, 64)).
				Value(&lng).
				Validate(coordinate(-180, 180)),
			navSelect(m, &nav),
		).Title("Where do you work?"),
	).RunWithContext(ctx)
	if err != nil {
		return "", err
	}

	if applyLocation(m, lat, lng, nav) {
		for i, p := range m.ServiceArea() {
			fmt.Println(dimStyle.Render(fmt.Sprintf("  corner %d: %.5f, %.5f", i+1, p.Lat, p.Lng)))
		}
	}
	return nav, nil
}

// applyLocation picks the typed center. Going back or leaving both fields
// empty picks nothing, so the location guard still applies. It reports
// whether a point was picked.
func applyLocation(m *wizard.Machine, lat, lng string, nav navigation) bool {
	lat, lng = strings.TrimSpace(lat), strings.TrimSpace(lng)
	if nav == navBack || lat == "" || lng == "" {
		return false
	}
	la, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return false
	}
	ln, err := strconv.ParseFloat(lng, 64)
	if err != nil {
		return false
	}
	if prev, ok := m.Location(); ok && prev.Lat == la && prev.Lng == ln {
		return false
	}
	m.PickLocation(domain.GeoPoint{Lat: la, Lng: ln})
	return true
}

func coordinate(lo, hi float64) func(string) error {
	return func(s string) error {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("enter a number")
		}
		if v < lo || v > hi {
			return fmt.Errorf("must be between %g and %g", lo, hi)
		}
		return nil
	}
}

func photoStep(ctx context.Context, m *wizard.Machine) (navigation, error) {
	var nav navigation
	var path string
	if img := m.Image(); img != nil {
		path = img.Filename
	}

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Profile photo").
				Description("Path to a JPEG, PNG, GIF or HEIC file").
				Value(&path),
			navSelect(m, &nav),
		).Title("Photo"),
	).RunWithContext(ctx)
	if err != nil {
		return "", err
	}

	path = strings.TrimSpace(path)
	if path == "" || (m.Image() != nil && path == m.Image().Filename) {
		return nav, nil
	}
	img, err := wizard.LoadImage(path)
	if err != nil {
		l := m.Localizer()
		switch err {
		case wizard.ErrImageTooLarge:
			m.Notices().Show(l.Text(wizard.MsgImageTooLarge, wizard.MaxImageBytes>>20))
		case wizard.ErrInvalidImage:
			m.Notices().Show(l.Text(wizard.MsgInvalidImage))
		default:
			m.Notices().Show(l.Text(wizard.MsgImageUnreadable))
		}
		return nav, nil
	}
	m.UseImage(img)
	return nav, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
