// Package client talks to the registration server: it submits a finished
// wizard and turns the result into a signed-in session.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"roflexi/internal/domain"
	"roflexi/internal/pkg/validator"
	"roflexi/internal/wizard"

	"go.uber.org/zap"
)

// DefaultTimeout bounds one submission round trip.
const DefaultTimeout = 15 * time.Second

// SessionBootstrap is what a successful submission hands to the handoff
// step. It is passed explicitly instead of living in shared storage.
type SessionBootstrap struct {
	UID          string
	CustomToken  string
	ExchangeCode string
	Role         domain.Role
}

// Probe reports whether the server looks reachable before anything is sent.
type Probe func(ctx context.Context) error

type Orchestrator struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	probe   Probe
	log     *zap.Logger
}

type Option func(*Orchestrator)

func WithHTTPClient(c *http.Client) Option { return func(o *Orchestrator) { o.http = c } }
func WithTimeout(d time.Duration) Option   { return func(o *Orchestrator) { o.timeout = d } }
func WithProbe(p Probe) Option             { return func(o *Orchestrator) { o.probe = p } }
func WithLogger(l *zap.Logger) Option      { return func(o *Orchestrator) { o.log = l } }

func NewOrchestrator(baseURL string, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
		timeout: DefaultTimeout,
		log:     zap.NewNop(),
	}
	o.probe = DialProbe(o.baseURL, 2*time.Second)
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// DialProbe checks that a TCP connection to the host of baseURL can be
// opened.
func DialProbe(baseURL string, timeout time.Duration) Probe {
	return func(ctx context.Context) error {
		u, err := url.Parse(baseURL)
		if err != nil {
			return err
		}
		host := u.Host
		if u.Port() == "" {
			port := "80"
			if u.Scheme == "https" {
				port = "443"
			}
			host = net.JoinHostPort(u.Hostname(), port)
		}
		d := net.Dialer{Timeout: timeout}
		conn, err := d.DialContext(ctx, "tcp", host)
		if err != nil {
			return err
		}
		return conn.Close()
	}
}

type createResponse struct {
	OK           bool              `json:"ok"`
	UID          string            `json:"uid"`
	CustomToken  string            `json:"customToken"`
	ExchangeCode string            `json:"exchangeCode"`
	Message      string            `json:"message"`
	Error        string            `json:"error"`
	Errors       map[string]string `json:"errors"`
}

// Submit sends the wizard's data once. Guard failures are returned as
// *wizard.GuardError before anything is sent; every other failure is a
// *SubmitError. On success the wizard is reset; on failure it is left as
// is so the user can fix and resend.
func (o *Orchestrator) Submit(ctx context.Context, m *wizard.Machine, idempotencyKey string) (*SessionBootstrap, error) {
	sub, err := m.PrepareSubmission()
	if err != nil {
		return nil, err
	}
	l := m.Localizer()
	notices := m.Notices()

	if o.probe != nil {
		if err := o.probe(ctx); err != nil {
			notices.Show(l.Text(wizard.MsgOffline))
			return nil, &SubmitError{Kind: KindOffline, Message: l.Text(wizard.MsgOffline), Err: err}
		}
	}

	body, contentType, err := encodeSubmission(sub)
	if err != nil {
		return nil, &SubmitError{Kind: KindUnknown, Message: l.Text(wizard.MsgUnknown), Err: err}
	}

	notices.Show(l.Text(wizard.MsgSubmitting))

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/create-"+string(sub.Role), body)
	if err != nil {
		return nil, &SubmitError{Kind: KindUnknown, Message: l.Text(wizard.MsgUnknown), Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := o.http.Do(req)
	if err != nil {
		serr := o.transportError(ctx, l, err)
		notices.Show(serr.Message)
		return nil, serr
	}
	defer resp.Body.Close()

	var data createResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		// a deadline can also fire while the body is being read
		serr := o.transportError(ctx, l, err)
		if serr.Kind == KindNetwork {
			serr = &SubmitError{Kind: KindUnknown, Status: resp.StatusCode, Message: l.Text(wizard.MsgUnknown), Err: err}
		}
		notices.Show(serr.Message)
		return nil, serr
	}

	if data.OK && data.UID != "" && data.CustomToken != "" {
		o.log.Info("account created", zap.String("uid", data.UID), zap.String("role", string(sub.Role)))
		notices.Clear()
		m.Reset()
		return &SessionBootstrap{
			UID:          data.UID,
			CustomToken:  data.CustomToken,
			ExchangeCode: data.ExchangeCode,
			Role:         sub.Role,
		}, nil
	}

	serr := &SubmitError{
		Kind:    KindRejected,
		Status:  resp.StatusCode,
		Message: rejectionMessage(l, resp.StatusCode, &data),
		Detail:  data.Error,
		Fields:  data.Errors,
	}
	if data.OK {
		serr.Kind = KindUnknown
		serr.Message = l.Text(wizard.MsgUnknown)
	}
	o.log.Warn("submission rejected", zap.Int("status", resp.StatusCode), zap.String("message", serr.Message))
	notices.Show(serr.Message)
	return nil, serr
}

func (o *Orchestrator) transportError(ctx context.Context, l *wizard.Localizer, err error) *SubmitError {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		o.log.Warn("submission timed out", zap.Duration("timeout", o.timeout))
		return &SubmitError{Kind: KindTimeout, Message: l.Text(wizard.MsgTimeout), Err: err}
	}
	o.log.Warn("submission failed", zap.Error(err))
	return &SubmitError{Kind: KindNetwork, Message: l.Text(wizard.MsgNetwork), Err: err}
}

func rejectionMessage(l *wizard.Localizer, status int, data *createResponse) string {
	if data.Message != "" {
		return data.Message
	}
	if len(data.Errors) > 0 {
		errs := validator.Errors{}
		for k, v := range data.Errors {
			errs[validator.Field(k)] = v
		}
		if _, msg, ok := errs.First(); ok {
			return msg
		}
	}
	return l.Text(wizard.MsgSubmitFailed, status)
}

// encodeSubmission builds the multipart body: scalar fields as text, tags,
// location and service area as JSON strings, the image as a file part.
func encodeSubmission(sub *wizard.Submission) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"fullName", sub.Form.FullName},
		{"email", sub.Form.Email},
		{"age", sub.Form.Age},
		{"password", sub.Form.Password},
		{"phone", sub.Form.Phone},
	}
	if sub.Role == domain.RoleProvider {
		tags, err := json.Marshal(sub.Tags)
		if err != nil {
			return nil, "", err
		}
		fields = append(fields, [2]string{"tags", string(tags)})
	}

	location, err := json.Marshal(sub.Location)
	if err != nil {
		return nil, "", err
	}
	area, err := json.Marshal(sub.ServiceArea)
	if err != nil {
		return nil, "", err
	}
	fields = append(fields,
		[2]string{"location", string(location)},
		[2]string{"serviceArea", string(area)},
	)

	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="profileImage"; filename=%q`, sub.Image.Filename))
	contentType := sub.Image.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(sub.Image.Data); err != nil {
		return nil, "", err
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
