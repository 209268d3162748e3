package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/pixol20/MemeSender/core/logger"
	"github.com/pixol20/MemeSender/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

var (
	ErrInvalidRegistration = errors.New("telegram: invalid registration")
	ErrDuplicate           = errors.New("telegram: already registered")
)

// Registry holds bot commands and callbacks. Command names are lower-case
// and start with a slash. Callbacks are keyed by the fixed-width prefix of
// their raw data (see package callbacks).
type Registry struct {
	mu        sync.RWMutex
	commands  map[string]commands.Command
	aliases   map[string]string
	callbacks map[string]tele.HandlerFunc
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		commands:  make(map[string]commands.Command),
		aliases:   make(map[string]string),
		callbacks: make(map[string]tele.HandlerFunc),
	}
}

// RegisterCommand adds cmd under name. Aliases may be given with or without
// the leading slash.
func (r *Registry) RegisterCommand(name string, cmd commands.Command) error {
	if name == "" || name[0] != '/' || cmd.Handler == nil || cmd.Description == "" {
		return r.reject("command", name, ErrInvalidRegistration)
	}
	name = strings.ToLower(name)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.resolve(name); taken {
		return r.reject("command", name, ErrDuplicate)
	}
	r.commands[name] = cmd
	for _, alias := range cmd.Aliases {
		alias = "/" + strings.TrimPrefix(strings.ToLower(alias), "/")
		if _, taken := r.resolve(alias); !taken {
			r.aliases[alias] = name
		}
	}
	return nil
}

// resolve maps a command or alias to its canonical name. Callers hold mu.
func (r *Registry) resolve(name string) (string, bool) {
	if _, ok := r.commands[name]; ok {
		return name, true
	}
	canonical, ok := r.aliases[name]
	return canonical, ok
}

// LookupCommand finds the command addressed by text, which may be a raw
// message such as "/Menu@bot now".
func (r *Registry) LookupCommand(text string) (string, commands.Command, bool) {
	name := commands.Normalize(text)
	if name == "" {
		return "", commands.Command{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	canonical, ok := r.resolve(name)
	if !ok {
		return "", commands.Command{}, false
	}
	return canonical, r.commands[canonical], true
}

// ListCommands returns the commands sorted by name. visibleOnly leaves out
// hidden and admin-only ones.
func (r *Registry) ListCommands(visibleOnly bool) []tele.Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var list []tele.Command
	for _, name := range slices.Sorted(maps.Keys(r.commands)) {
		meta := r.commands[name]
		if visibleOnly && (meta.Hidden || meta.AdminOnly) {
			continue
		}
		list = append(list, tele.Command{Text: name, Description: meta.Description})
	}
	return list
}

// RegisterCallback maps a callback data prefix to handler.
func (r *Registry) RegisterCallback(prefix string, handler tele.HandlerFunc) error {
	if prefix == "" || handler == nil {
		return r.reject("callback", prefix, ErrInvalidRegistration)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.callbacks[prefix]; exists {
		return r.reject("callback", prefix, ErrDuplicate)
	}
	r.callbacks[prefix] = handler
	return nil
}

// GetCallback returns the handler registered for prefix.
func (r *Registry) GetCallback(prefix string) (tele.HandlerFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.callbacks[prefix]
	return h, ok
}

// ListCallbacks returns the registered prefixes in sorted order.
func (r *Registry) ListCallbacks() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.callbacks))
}

func (r *Registry) reject(kind, name string, err error) error {
	logger.Warn(context.Background(), "tg.wire", "register."+kind+".skip",
		slog.String("name", name),
		slog.String("reason", err.Error()),
	)
	return fmt.Errorf("%w: %s %q", err, kind, name)
}

// PublishCommands sets the visible commands of reg as the bot command menu.
func PublishCommands(ctx context.Context, bot *tele.Bot, reg *Registry) {
	list := reg.ListCommands(true)
	if len(list) == 0 {
		return
	}
	if err := bot.SetCommands(list); err != nil {
		logger.Error(ctx, "tg.wire", "register.commands.set_failed", slog.String("err", err.Error()))
		return
	}
	logger.Info(ctx, "tg.wire", "register.commands", slog.Int("commands", len(list)))
}
