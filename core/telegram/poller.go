package telegram

import (
	"net"
	"strconv"
	"strings"
	"time"

	coreconfig "github.com/pixol20/MemeSender/core/config"

	tele "gopkg.in/telebot.v4"
)

// DefaultLongPollTimeout applies when the configured timeout is zero.
const DefaultLongPollTimeout = 10 * time.Second

// AllowedUpdates are the update types requested from Telegram. Anything else
// (channel posts, chat member changes, polls) has no route.
var AllowedUpdates = []string{"message", "callback_query", "inline_query"}

// WebhookOptions declares webhook listener settings.
type WebhookOptions struct {
	Listen string
	Port   int
	URL    string
}

// PollerOptions configures BuildPoller.
type PollerOptions struct {
	RunMode         string
	LongPollTimeout time.Duration
	Webhook         WebhookOptions
	// AllowedUpdates overrides the package default when non-nil.
	AllowedUpdates []string
}

// PollerOptionsFrom maps the core config to poller options.
func PollerOptionsFrom(cfg *coreconfig.Config) PollerOptions {
	return PollerOptions{
		RunMode:         cfg.Telegram.RunMode,
		LongPollTimeout: time.Duration(cfg.Telegram.LongPollTimeoutSeconds) * time.Second,
		Webhook: WebhookOptions{
			Listen: cfg.Webhook.Listen,
			Port:   cfg.Webhook.Port,
			URL:    cfg.Webhook.URL,
		},
	}
}

// IsWebhook reports whether the options select webhook mode.
func (o PollerOptions) IsWebhook() bool {
	return strings.EqualFold(strings.TrimSpace(o.RunMode), coreconfig.RunModeWebhook)
}

// Timeout returns the effective long polling timeout.
func (o PollerOptions) Timeout() time.Duration {
	if o.LongPollTimeout <= 0 {
		return DefaultLongPollTimeout
	}
	return o.LongPollTimeout
}

func (o PollerOptions) allowed() []string {
	if o.AllowedUpdates != nil {
		return o.AllowedUpdates
	}
	return AllowedUpdates
}

// BuildPoller returns a webhook or long poller for opts.
func BuildPoller(opts PollerOptions) tele.Poller {
	if opts.IsWebhook() {
		return &tele.Webhook{
			Listen:         net.JoinHostPort(opts.Webhook.Listen, strconv.Itoa(opts.Webhook.Port)),
			AllowedUpdates: opts.allowed(),
			Endpoint:       &tele.WebhookEndpoint{PublicURL: opts.Webhook.URL},
		}
	}
	return &tele.LongPoller{
		Timeout:        opts.Timeout(),
		AllowedUpdates: opts.allowed(),
	}
}
