// Package contentgen fans a finished transcript out to the LLM: one call per
// user automation plus one fixed follow-up email.
package contentgen

import (
	"context"

	"golang.org/x/sync/errgroup"

	"meetscribe-server/internal/domain/automation"
	"meetscribe-server/internal/domain/content"
	"meetscribe-server/internal/domain/meeting"
	"meetscribe-server/internal/infrastructure/logger"
	"meetscribe-server/internal/infrastructure/metrics"
)

// emailSystemPrompt instructs the fixed follow-up-email generation.
const emailSystemPrompt = "You are an expert assistant for financial advisors. " +
	"Your task is to draft a concise, professional follow-up email based on a meeting transcript. " +
	"The email should summarize key discussion points, list clear action items (for both the advisor and the client), " +
	"and end with a positive closing statement. Format it as a ready-to-send email."

const transcriptPreamble = "Here is the meeting transcript:\n\n"

// maxConcurrentGenerations bounds the automation fan-out per meeting.
const maxConcurrentGenerations = 4

// LLM abstracts the text-generation provider.
type LLM interface {
	Generate(ctx context.Context, systemPrompt, userContent string) (string, error)
}

// Generator produces and persists all content artifacts for one meeting.
// It is safe to re-run: every write is an upsert keyed by
// (meeting, automation) or (meeting, type).
type Generator struct {
	automations automation.Repository
	contents    content.Repository
	llm         LLM
}

// NewGenerator constructs a Generator with required dependencies.
func NewGenerator(automations automation.Repository, contents content.Repository, llm LLM) *Generator {
	return &Generator{
		automations: automations,
		contents:    contents,
		llm:         llm,
	}
}

// GenerateForMeeting runs one generation call per automation owned by the
// meeting's user, concurrently, plus the fixed email call. A failed LLM call
// is logged and the remaining artifacts are still written, but a failed
// persistence write is returned so the caller keeps the meeting out of
// completed: an artifact that was generated and then lost must be retried.
func (g *Generator) GenerateForMeeting(ctx context.Context, m *meeting.Meeting, transcript string) error {
	automations, err := g.automations.ListByUser(ctx, m.UserID)
	if err != nil {
		return err
	}

	log := logger.GetLogger()
	userContent := transcriptPreamble + transcript

	var eg errgroup.Group
	eg.SetLimit(maxConcurrentGenerations)

	eg.Go(func() error {
		text, genErr := g.llm.Generate(ctx, emailSystemPrompt, userContent)
		if genErr != nil {
			log.Error().
				Err(genErr).
				Uint("meeting_id", m.ID).
				Msg("follow-up email generation failed")
			return nil
		}
		if upsertErr := g.contents.UpsertByType(ctx, &content.GeneratedContent{
			MeetingID: m.ID,
			Type:      content.TypeEmail,
			Content:   text,
		}); upsertErr != nil {
			log.Error().
				Err(upsertErr).
				Uint("meeting_id", m.ID).
				Msg("failed to persist follow-up email")
			return upsertErr
		}
		metrics.RecordContentGenerated(content.TypeEmail)
		return nil
	})

	for _, a := range automations {
		a := a
		eg.Go(func() error {
			text, genErr := g.llm.Generate(ctx, a.Prompt, userContent)
			if genErr != nil {
				log.Error().
					Err(genErr).
					Uint("meeting_id", m.ID).
					Uint("automation_id", a.ID).
					Msg("automation generation failed")
				return nil
			}
			automationID := a.ID
			if upsertErr := g.contents.UpsertByAutomation(ctx, &content.GeneratedContent{
				MeetingID:    m.ID,
				AutomationID: &automationID,
				Type:         content.SocialPostType(a.Platform),
				Content:      text,
			}); upsertErr != nil {
				log.Error().
					Err(upsertErr).
					Uint("meeting_id", m.ID).
					Uint("automation_id", a.ID).
					Msg("failed to persist automation content")
				return upsertErr
			}
			metrics.RecordContentGenerated(content.SocialPostType(a.Platform))
			return nil
		})
	}

	return eg.Wait()
}
