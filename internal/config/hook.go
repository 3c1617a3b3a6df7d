package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// HookConfig carries the tunables of the addon cancellation hook.
type HookConfig struct {
	TicketFieldName         string `mapstructure:"ticketFieldName"`
	InvoiceCreatedTemplate  string `mapstructure:"invoiceCreatedTemplate"`
	SendInvoiceCreatedEmail bool   `mapstructure:"sendInvoiceCreatedEmail"`
	CreateEmptySplitInvoice bool   `mapstructure:"createEmptySplitInvoice"`
	NoteDateFormat          string `mapstructure:"noteDateFormat"`
}

func DefaultHookConfig() HookConfig {
	return HookConfig{
		TicketFieldName:         "Cancellation Ticket ID",
		InvoiceCreatedTemplate:  "Invoice Created",
		SendInvoiceCreatedEmail: true,
		CreateEmptySplitInvoice: false,
		NoteDateFormat:          "02/01/2006",
	}
}

type HookConfigHolder struct {
	current atomic.Value // holds HookConfig
}

// NewStaticHookConfigHolder returns a holder pinned to cfg, without file watching.
func NewStaticHookConfigHolder(cfg HookConfig) *HookConfigHolder {
	holder := &HookConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewHookConfigHolder() (*HookConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("hook")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/addonhook")
	v.AddConfigPath(".")

	v.SetEnvPrefix("ADDONHOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultHookConfig()
	v.SetDefault("hook.ticketFieldName", defaults.TicketFieldName)
	v.SetDefault("hook.invoiceCreatedTemplate", defaults.InvoiceCreatedTemplate)
	v.SetDefault("hook.sendInvoiceCreatedEmail", defaults.SendInvoiceCreatedEmail)
	v.SetDefault("hook.createEmptySplitInvoice", defaults.CreateEmptySplitInvoice)
	v.SetDefault("hook.noteDateFormat", defaults.NoteDateFormat)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileLoaded = false
	}

	var cfg HookConfig
	if err := v.UnmarshalKey("hook", &cfg); err != nil {
		return nil, err
	}
	if err := validateHookConfig(cfg); err != nil {
		return nil, err
	}

	holder := NewStaticHookConfigHolder(cfg)
	if !fileLoaded {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated HookConfig
		if err := v.UnmarshalKey("hook", &updated); err != nil {
			log.Printf("[hook-config] reload failed: %v", err)
			return
		}
		if err := validateHookConfig(updated); err != nil {
			log.Printf("[hook-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[hook-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *HookConfigHolder) Get() HookConfig {
	return h.current.Load().(HookConfig)
}

func validateHookConfig(cfg HookConfig) error {
	if strings.TrimSpace(cfg.TicketFieldName) == "" {
		return errors.New("hook.ticketFieldName cannot be empty")
	}
	if strings.TrimSpace(cfg.InvoiceCreatedTemplate) == "" {
		return errors.New("hook.invoiceCreatedTemplate cannot be empty")
	}
	if strings.TrimSpace(cfg.NoteDateFormat) == "" {
		return errors.New("hook.noteDateFormat cannot be empty")
	}
	return nil
}
