package wizard

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Key is the English source text of a user-facing message. Translations
// are registered with x/text under the same key.
type Key string

const (
	MsgMissingName       Key = "Please enter your name."
	MsgInvalidEmail      Key = "Invalid email address."
	MsgUnderage          Key = "You must be at least 18 years old."
	MsgWeakPassword      Key = "Password must be at least 6 characters."
	MsgMissingPhone      Key = "Please enter a phone number."
	MsgPhoneDigits       Key = "The number must contain 9 digits (no prefix)."
	MsgMissingImage      Key = "Please upload a photo."
	MsgInvalidImage      Key = "Invalid file. Select an image."
	MsgImageTooLarge     Key = "The image is larger than %d MB."
	MsgImageUnreadable   Key = "Could not load the image."
	MsgMissingTags       Key = "Select at least one service."
	MsgMissingLocation   Key = "Pick an area on the map."
	MsgPickLocationFirst Key = "Select an area on the map before continuing."
	MsgOffline           Key = "No internet connection. Check your connection and try again."
	MsgSubmitting        Key = "Sending your details..."
	MsgTimeout           Key = "The submission timed out. Try again."
	MsgNetwork           Key = "Network error: could not reach the server (check your connection or CORS)."
	MsgUnknown           Key = "Unknown error. Try again."
	MsgSubmitFailed      Key = "Submission failed: %d"
	MsgProcessing        Key = "Processing your account..."
	MsgHandoffFailed     Key = "Could not sign you in. Please start again."
)

var romanian = map[Key]string{
	MsgMissingName:       "Completați numele.",
	MsgInvalidEmail:      "Adresă de e-mail invalidă.",
	MsgUnderage:          "Trebuie să ai cel puțin 18 ani.",
	MsgWeakPassword:      "Parola trebuie să aibă cel puțin 6 caractere.",
	MsgMissingPhone:      "Introduceți un număr de telefon.",
	MsgPhoneDigits:       "Numărul trebuie să conțină 9 cifre (fără prefix).",
	MsgMissingImage:      "Te rugăm să încarci o poză.",
	MsgInvalidImage:      "Fișier invalid. Selectează o imagine.",
	MsgImageTooLarge:     "Imaginea depășește %d MB.",
	MsgImageUnreadable:   "Nu s-a putut încărca imaginea.",
	MsgMissingTags:       "Selectează cel puțin un serviciu.",
	MsgMissingLocation:   "Alege o zonă pe hartă.",
	MsgPickLocationFirst: "Selectează o zonă pe hartă înainte de a continua.",
	MsgOffline:           "Lipsă conexiune la internet. Verifică conexiunea și încearcă din nou.",
	MsgSubmitting:        "Se trimit datele...",
	MsgTimeout:           "Timpul de trimitere a expirat. Încearcă din nou.",
	MsgNetwork:           "Eroare de rețea: Imposibil de a contacta serverul (verifică conexiunea sau CORS).",
	MsgUnknown:           "Eroare necunoscută. Încearcă din nou.",
	MsgSubmitFailed:      "Eroare la trimitere: %d",
	MsgProcessing:        "Se procesează contul...",
	MsgHandoffFailed:     "Nu te-am putut autentifica. Te rugăm să începi din nou.",
}

// DefaultLanguage is used when no language is requested.
var DefaultLanguage = language.Romanian

var supported = language.NewMatcher([]language.Tag{language.Romanian, language.English})

func init() {
	for key, text := range romanian {
		_ = message.SetString(language.Romanian, string(key), text)
		_ = message.SetString(language.English, string(key), string(key))
	}
}

// Localizer renders message keys in one language.
type Localizer struct {
	printer *message.Printer
	tag     language.Tag
}

// NewLocalizer picks the closest supported language to lang, falling back
// to Romanian.
func NewLocalizer(lang string) *Localizer {
	tag := DefaultLanguage
	if lang != "" {
		if requested, err := language.Parse(lang); err == nil {
			matched, _, _ := supported.Match(requested)
			base, _ := matched.Base()
			tag = language.Make(base.String())
		}
	}
	return &Localizer{printer: message.NewPrinter(tag), tag: tag}
}

func (l *Localizer) Language() language.Tag { return l.tag }

func (l *Localizer) Text(key Key, args ...any) string {
	return l.printer.Sprintf(string(key), args...)
}
