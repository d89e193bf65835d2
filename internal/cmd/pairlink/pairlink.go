// Package pairlink parses engine flags and dispatches CLI subcommands.
package pairlink

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/twinup/pairlink/internal/deeplink"
	"github.com/twinup/pairlink/internal/invitation/app"
	"github.com/twinup/pairlink/internal/invitation/domain"
	entrypoint "github.com/twinup/pairlink/internal/platform/cmd"
	"github.com/twinup/pairlink/internal/transport"
	"github.com/twinup/pairlink/internal/transport/smtp"
	"github.com/twinup/pairlink/internal/transport/twilio"
)

// Config holds pairlink command configuration.
type Config struct {
	Engine app.Config    `envPrefix:"PAIRLINK_"`
	SMTP   smtp.Config   `envPrefix:"PAIRLINK_"`
	Twilio twilio.Config `envPrefix:"PAIRLINK_"`
}

// ParseConfig parses environment and flags into Config. The returned slice
// holds the subcommand and its arguments.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, []string, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, nil, err
	}
	fs.StringVar(&cfg.Engine.StorageDriver, "storage-driver", cfg.Engine.StorageDriver, "Storage driver: bbolt or sqlite")
	fs.StringVar(&cfg.Engine.StoragePath, "storage-path", cfg.Engine.StoragePath, "Path to the invitation database file")
	fs.StringVar(&cfg.Engine.LinkScheme, "link-scheme", cfg.Engine.LinkScheme, "URL scheme used in generated deep links")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, nil, err
	}
	return cfg, fs.Args(), nil
}

// Run dispatches one subcommand against the wired engine.
func Run(ctx context.Context, cfg Config, args []string, stdout io.Writer) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServicePairlink, func(ctx context.Context) error {
		if len(args) == 0 {
			return usageError()
		}
		command, rest := args[0], args[1:]

		// Routing needs no storage; keep it usable without a database.
		if command == "route" {
			return runRoute(rest, stdout)
		}

		engine, err := app.New(ctx, cfg.Engine, app.Options{
			Email: emailComposer(cfg),
			SMS:   smsComposer(cfg),
		})
		if err != nil {
			return err
		}
		defer func() { _ = engine.Close() }()

		switch command {
		case "create":
			return runCreate(ctx, engine.Service, rest, stdout)
		case "accept":
			return runAccept(ctx, engine.Service, rest, stdout)
		case "decline":
			return runDecline(ctx, engine.Service, rest, stdout)
		case "retry":
			return runRetry(ctx, engine.Service, rest, stdout)
		case "list":
			return runList(ctx, engine.Service, stdout)
		case "stats":
			return runStats(ctx, engine.Service, stdout)
		default:
			return usageError()
		}
	})
}

func usageError() error {
	return fmt.Errorf("usage: pairlink <create|accept|decline|retry|list|stats|route> [flags]")
}

func emailComposer(cfg Config) transport.EmailComposer {
	mailer := smtp.NewMailer(cfg.SMTP)
	if !mailer.Available() {
		return nil
	}
	return mailer
}

func smsComposer(cfg Config) transport.SMSComposer {
	sender := twilio.NewSender(cfg.Twilio)
	if !sender.Available() {
		return nil
	}
	return sender
}

func runCreate(ctx context.Context, service *domain.Service, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	inviter := fs.String("inviter", "", "Display name of the inviter")
	email := fs.String("email", "", "Recipient email address")
	phone := fs.String("phone", "", "Recipient phone number")
	method := fs.String("method", "email", "Delivery method: email, sms, or both")
	twinType := fs.String("twin-type", "", "Twin type label carried on the invitation")
	accentColor := fs.String("accent-color", "", "Accent color carried on the invitation")
	if err := fs.Parse(args); err != nil {
		return err
	}

	invitation, result, err := service.CreateAndSend(ctx, domain.CreateInput{
		InviterName:    *inviter,
		RecipientEmail: *email,
		RecipientPhone: *phone,
		TwinType:       *twinType,
		AccentColor:    *accentColor,
	}, domain.Method(strings.ToLower(*method)))
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "created %s outcome=%s\n", invitation.ID, result.Outcome)
	return printJSON(stdout, invitation)
}

func runAccept(ctx context.Context, service *domain.Service, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("accept", flag.ContinueOnError)
	token := fs.String("token", "", "Invitation token to accept")
	if err := fs.Parse(args); err != nil {
		return err
	}

	invitation, err := service.Accept(ctx, *token)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "accepted %s\n", invitation.ID)
	return printJSON(stdout, invitation)
}

func runDecline(ctx context.Context, service *domain.Service, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("decline", flag.ContinueOnError)
	token := fs.String("token", "", "Invitation token to decline")
	if err := fs.Parse(args); err != nil {
		return err
	}

	invitation, err := service.Decline(ctx, *token)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "declined %s\n", invitation.ID)
	return printJSON(stdout, invitation)
}

func runRetry(ctx context.Context, service *domain.Service, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("retry", flag.ContinueOnError)
	id := fs.String("id", "", "Invitation ID to retry")
	channel := fs.String("channel", "email", "Channel to retry: email or sms")
	if err := fs.Parse(args); err != nil {
		return err
	}

	invitation, result, err := service.Retry(ctx, *id, domain.Channel(strings.ToLower(*channel)))
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "retried %s outcome=%s attempts=%d\n", invitation.ID, result.Outcome, invitation.AttemptCount)
	return nil
}

func runList(ctx context.Context, service *domain.Service, stdout io.Writer) error {
	records, err := service.List(ctx)
	if err != nil {
		return err
	}
	return printJSON(stdout, records)
}

func runStats(ctx context.Context, service *domain.Service, stdout io.Writer) error {
	stats, err := service.Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "sent=%d accepted=%d declined=%d expired=%d acceptance=%.1f%% avg-response=%s\n",
		stats.TotalSent, stats.TotalAccepted, stats.TotalDeclined, stats.TotalExpired,
		stats.AcceptanceRate, stats.AverageResponseTime)
	return printJSON(stdout, stats.RecentInvitations)
}

func runRoute(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("route", flag.ContinueOnError)
	rawURL := fs.String("url", "", "Deep link URL to route")
	if err := fs.Parse(args); err != nil {
		return err
	}

	intent := deeplink.NewRouter().Route(*rawURL)
	return printJSON(stdout, intent)
}

func printJSON(stdout io.Writer, value any) error {
	encoder := json.NewEncoder(stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
