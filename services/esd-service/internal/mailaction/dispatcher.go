// Package mailaction runs the mail-send event actions configured for an event.
package mailaction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/sas-esd/esdmail/libs/ids"
	otelx "github.com/sas-esd/esdmail/libs/otel"
	"github.com/sas-esd/esdmail/services/esd-service/internal/email"
	"github.com/sas-esd/esdmail/services/esd-service/internal/eventaction"
	"github.com/sas-esd/esdmail/services/esd-service/internal/eventdata"
	"github.com/sas-esd/esdmail/services/esd-service/internal/platform"
	"github.com/sas-esd/esdmail/services/esd-service/internal/render"
	"github.com/sas-esd/esdmail/services/esd-service/internal/storage"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type ActionLister interface {
	ListByEvent(ctx context.Context, eventName, actionName string) ([]eventaction.EventAction, error)
}

type Dispatcher struct {
	actions   ActionLister
	templates storage.TranslationFinder
	renderer  *render.Renderer
	sender    email.Sender
	logger    *slog.Logger
}

func NewDispatcher(actions ActionLister, templates storage.TranslationFinder, renderer *render.Renderer, sender email.Sender, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		actions:   actions,
		templates: templates,
		renderer:  renderer,
		sender:    sender,
		logger:    logger,
	}
}

// Handle sends one mail per recipient for every mail-send action of evt.
// Actions with an unusable config or without a translation are skipped.
func (d *Dispatcher) Handle(ctx context.Context, evt eventdata.MailAction) error {
	ctx, span := otelx.Tracer("mailaction").Start(ctx, "mailaction.handle",
		trace.WithAttributes(attribute.String("event.name", evt.Name())),
	)
	defer span.End()

	logger := d.logger.With("event", evt.Name())
	if sc, ok := evt.(eventdata.SalesChannelAware); ok {
		logger = logger.With("sales_channel_id", sc.SalesChannelID())
	}

	actions, err := d.actions.ListByEvent(ctx, evt.Name(), platform.MailSendAction)
	if err != nil {
		return fmt.Errorf("list event actions: %w", err)
	}
	if len(actions) == 0 {
		logger.Debug("no mail action configured")
		return nil
	}

	recipients := evt.MailStruct().Recipients
	if len(recipients) == 0 {
		logger.Info("event has no mail recipients")
		return nil
	}

	languages, err := languageChain(evt.Context())
	if err != nil {
		return err
	}
	vars := evt.TemplateVars()

	var errs []error
	for _, action := range actions {
		actionLogger := logger.With("event_action_id", ids.BytesToHex(action.ID))
		if err := d.runAction(ctx, actionLogger, action, languages, vars, recipients); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

func (d *Dispatcher) runAction(ctx context.Context, logger *slog.Logger, action eventaction.EventAction, languages [][]byte, vars map[string]any, recipients map[string]string) error {
	cfg, err := eventaction.ParseMailSendConfig(action.Config)
	if err != nil {
		logger.Warn("event action config invalid, skipped", "err", err)
		return nil
	}
	templateID, err := cfg.TemplateID()
	if err != nil {
		logger.Warn("event action without mail template, skipped", "err", err)
		return nil
	}

	translation, err := d.templates.FindTranslation(ctx, templateID, languages...)
	if errors.Is(err, storage.ErrNotFound) {
		logger.Warn("mail template has no translation, skipped", "mail_template_id", cfg.MailTemplateID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load mail template %s: %w", cfg.MailTemplateID, err)
	}

	rendered, err := d.renderer.Render(render.Source{
		Subject: translation.Subject,
		HTML:    translation.ContentHTML,
		Plain:   translation.ContentPlain,
	}, vars)
	if err != nil {
		return fmt.Errorf("render mail template %s: %w", cfg.MailTemplateID, err)
	}

	var errs []error
	for _, to := range sortedAddresses(recipients) {
		err := d.sender.Send(ctx, email.Message{
			FromName: translation.SenderName,
			To:       to,
			ToName:   recipients[to],
			Subject:  rendered.Subject,
			HTML:     rendered.HTML,
			Plain:    rendered.Plain,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("send to %s: %w", to, err))
			continue
		}
		logger.Info("mail sent", "to", to, "language_id", translation.LanguageID)
	}
	return errors.Join(errs...)
}

// languageChain is the context language followed by the system language.
func languageChain(c platform.Context) ([][]byte, error) {
	primary, err := ids.HexToBytes(c.Language())
	if err != nil {
		return nil, fmt.Errorf("context language: %w", err)
	}
	chain := [][]byte{primary}
	if c.Language() != platform.LanguageSystem {
		chain = append(chain, platform.SystemLanguageID())
	}
	return chain, nil
}

func sortedAddresses(recipients map[string]string) []string {
	out := make([]string, 0, len(recipients))
	for addr := range recipients {
		out = append(out, addr)
	}
	sort.Strings(out)
	return out
}
