package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"roflexi/internal/client"
	"roflexi/internal/domain"
	"roflexi/internal/pkg/logger"
	"roflexi/internal/wizard"
)

type options struct {
	server  string
	timeout time.Duration
	role    string
	lang    string
	verbose bool
}

func rootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "wizard",
		Short:         "Register a provider or requester account",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.server, "server", "http://localhost:3000", "registration server base URL")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", client.DefaultTimeout, "submission timeout")
	cmd.Flags().StringVar(&opts.role, "role", "", "provider or requester (asked when empty)")
	cmd.Flags().StringVar(&opts.lang, "lang", "ro", "notice language (ro or en)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log HTTP activity")

	return cmd
}

func run(ctx context.Context, opts *options) error {
	log := zap.NewNop()
	if opts.verbose {
		l, err := logger.New("dev")
		if err != nil {
			return err
		}
		log = l
		defer func() { _ = log.Sync() }()
	}

	role := domain.Role(opts.role)
	if role == "" {
		if err := askRole(ctx, &role); err != nil {
			return err
		}
	}
	if !role.Valid() {
		return fmt.Errorf("unknown role %q", opts.role)
	}

	m := wizard.New(role, wizard.WithLocalizer(wizard.NewLocalizer(opts.lang)))
	orch := client.NewOrchestrator(opts.server, client.WithTimeout(opts.timeout), client.WithLogger(log))
	handoff := client.NewHandoffClient(opts.server, client.WithTimeout(opts.timeout), client.WithLogger(log))

	fmt.Println(titleStyle.Render(fmt.Sprintf("Roflexi registration (%s)", role)))

	bootstrap, err := runWizard(ctx, m, orch)
	if err != nil {
		return err
	}

	fmt.Println(dimStyle.Render(m.Localizer().Text(wizard.MsgProcessing)))
	session, err := handoff.Complete(ctx, bootstrap)
	if err != nil {
		fmt.Println(errorStyle.Render(m.Localizer().Text(wizard.MsgHandoffFailed)))
		return err
	}

	fmt.Println(okStyle.Render("Signed in as " + session.UID))
	fmt.Println(dimStyle.Render(fmt.Sprintf("role %s, session valid until %s", session.Role, session.ExpiresAt.Local().Format(time.RFC1123))))
	return nil
}

func askRole(ctx context.Context, role *domain.Role) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[domain.Role]().
				Title("Account type").
				Options(
					huh.NewOption("I offer services (provider)", domain.RoleProvider),
					huh.NewOption("I need help (requester)", domain.RoleRequester),
				).
				Value(role),
		),
	).RunWithContext(ctx)
}

// runWizard loops over the steps until a submission succeeds or the user
// aborts.
func runWizard(ctx context.Context, m *wizard.Machine, orch *client.Orchestrator) (*client.SessionBootstrap, error) {
	key := newIdempotencyKey()

	for {
		nav, err := runStep(ctx, m)
		if err != nil {
			return nil, err
		}
		printNotice(m)

		switch nav {
		case navBack:
			m.Back()
			continue
		case navNext:
			_ = m.Next()
			printNotice(m)
			continue
		}

		b, err := orch.Submit(ctx, m, key)
		printNotice(m)
		if err == nil {
			return b, nil
		}

		var guard *wizard.GuardError
		var serr *client.SubmitError
		switch {
		case errors.As(err, &guard):
		case errors.As(err, &serr):
			// a rejected submission will be edited, so it needs a new key
			if !serr.Retryable() {
				key = newIdempotencyKey()
			}
			if serr.Detail != "" {
				fmt.Println(errorStyle.Render("  " + serr.Detail))
			}
			for field, msg := range serr.Fields {
				fmt.Println(errorStyle.Render(fmt.Sprintf("  %s: %s", field, msg)))
			}
		default:
			return nil, err
		}
	}
}

func printNotice(m *wizard.Machine) {
	if text, ok := m.Notices().Current(); ok {
		fmt.Println(noticeStyle.Render(text))
		m.Notices().Clear()
	}
}
