// Package engine runs one conversation turn: it extracts requirements from the
// utterance, advances the stage state machine, and attaches recommendations when the
// stage calls for them. A turn is a pure function of its input apart from the optional
// Phraser call.
package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/righthome-ai/property-copilot/internal/extractor"
	"github.com/righthome-ai/property-copilot/internal/recommend"
	"github.com/righthome-ai/property-copilot/internal/requirement"
)

// Conversation stages. Anything at or above StageClosed is terminal.
const (
	StageGreeting   = 1
	StageGathering  = 2
	StageRecommend  = 3
	StageScheduling = 4
	StageObjection  = 5
	StageFollowUp   = 6
	StageClosed     = 7
)

// Input is one user turn against a profile snapshot.
type Input struct {
	Utterance string              `json:"utterance"`
	Profile   requirement.Profile `json:"profile"`
	Stage     int                 `json:"stage"`
}

// Result is the outcome of a turn.
type Result struct {
	Response              string              `json:"response"`
	UpdatedRequirementMap requirement.Profile `json:"updatedRequirementMap"`
	UpdatedStage          int                 `json:"updatedStage"`
	ShowRecommendations   bool                `json:"showRecommendations"`
	ShowScheduleOptions   bool                `json:"showScheduleOptions"`
	MissingFields         []requirement.Field `json:"missingFields"`
	QuickReplies          []string            `json:"quickReplies"`
	Recommendations       []recommend.Match   `json:"recommendations"`

	// Bookkeeping for callers; not part of the wire contract.
	Pass      recommend.Pass      `json:"-"`
	Reset     bool                `json:"-"`
	Extracted []requirement.Field `json:"-"`
	Cleared   []requirement.Field `json:"-"`
	Phrased   bool                `json:"-"`
}

// Recommender ranks the catalog for a profile.
type Recommender interface {
	Recommend(p requirement.Profile) recommend.Result
}

// Engine runs turns. It holds no per-conversation state and is safe for concurrent use
// as long as its Recommender and Phraser are.
type Engine struct {
	recommender Recommender
	phraser     Phraser
}

// Option configures an Engine.
type Option func(*Engine)

// WithPhraser installs a Phraser for stage 1 and 2 prompts.
func WithPhraser(p Phraser) Option {
	return func(e *Engine) {
		if p != nil {
			e.phraser = p
		}
	}
}

// New creates an engine.
func New(r Recommender, opts ...Option) *Engine {
	e := &Engine{recommender: r, phraser: NopPhraser{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Turn runs one turn. When the Phraser fails, Turn still returns the fully computed
// result with the canned reply, together with an error wrapping ErrPhrasing.
func (e *Engine) Turn(ctx context.Context, in Input) (Result, error) {
	stage := in.Stage
	if stage < StageGreeting {
		stage = StageGreeting
	}

	profile := in.Profile.Clone()
	profile.Normalize()

	ex := extractor.Extract(in.Utterance, profile)
	if ex.Reset {
		return resetResult(), nil
	}

	t := &turn{
		lower:   strings.ToLower(strings.TrimSpace(in.Utterance)),
		profile: ex.Profile,
		extract: ex,
		res: Result{
			UpdatedStage: stage,
			Extracted:    ex.Extracted,
			Cleared:      ex.Cleared,
		},
	}

	var phrase bool
	switch stage {
	case StageGreeting:
		phrase = t.greeting()
	case StageGathering:
		phrase = t.gathering(e.recommender)
	case StageRecommend:
		t.recommendFeedback()
	case StageScheduling:
		t.scheduling()
	case StageObjection:
		t.objection()
	case StageFollowUp:
		t.followUp()
	default:
		t.res.Response = replyClosing
	}

	if t.res.ShowRecommendations {
		rec := t.rec
		if rec == nil {
			r := e.recommender.Recommend(t.profile)
			rec = &r
		}
		t.res.Pass = rec.Pass
		t.res.Recommendations = rec.Matches
		if len(rec.Matches) == 0 {
			t.res.Response = replyNoMatches
			t.res.QuickReplies = noMatchReplies
			phrase = false
		}
	}

	t.res.UpdatedRequirementMap = t.profile
	t.res.MissingFields = t.profile.MissingFields()
	if t.res.QuickReplies == nil {
		t.res.QuickReplies = []string{}
	}
	if t.res.Recommendations == nil {
		t.res.Recommendations = []recommend.Match{}
	}

	if !phrase {
		return t.res, nil
	}
	text, err := e.phraser.Phrase(ctx, PhraseRequest{
		Utterance:     in.Utterance,
		Profile:       t.profile.Clone(),
		Stage:         stage,
		MissingFields: t.res.MissingFields,
		HasMatches:    len(t.res.Recommendations) > 0,
		Canned:        t.res.Response,
	})
	if err != nil {
		return t.res, fmt.Errorf("%w: %v", ErrPhrasing, err)
	}
	if text = strings.TrimSpace(text); text != "" {
		t.res.Response = text
		t.res.Phrased = true
	}
	return t.res, nil
}

func resetResult() Result {
	p := requirement.Profile{}
	return Result{
		Response:              replyReset + replyAskBasics,
		UpdatedRequirementMap: p,
		UpdatedStage:          StageGreeting,
		MissingFields:         p.MissingFields(),
		QuickReplies:          StarterReplies,
		Recommendations:       []recommend.Match{},
		Reset:                 true,
	}
}

// turn is the working state of a single Turn call.
type turn struct {
	lower   string
	profile requirement.Profile
	extract extractor.Result
	res     Result
	// rec caches a ranking of the current profile computed by a stage handler.
	rec *recommend.Result
}

// greeting handles stage 1. It reports whether the reply is a prompt the Phraser may reword.
func (t *turn) greeting() bool {
	if t.profile.IsEmpty() {
		t.res.Response = replyAskBasics
		t.res.QuickReplies = StarterReplies
		return true
	}
	missing := t.profile.MissingFields()
	if len(missing) > 0 {
		t.res.UpdatedStage = StageGathering
		t.res.Response = replyUnderstand + missingPrompt(missing, t.profile)
		return true
	}
	t.res.UpdatedStage = StageRecommend
	t.res.Response = replyUnderstand + replyFindingMatches
	t.res.ShowRecommendations = true
	return false
}

// gathering handles stage 2. When the user adds nothing new but the catalog already has
// exact matches for what is known, it moves on and notes the remaining gaps.
func (t *turn) gathering(r Recommender) bool {
	missing := t.profile.MissingFields()
	if len(missing) == 0 {
		t.res.UpdatedStage = StageRecommend
		t.res.Response = replyFoundMatches
		t.res.ShowRecommendations = true
		return false
	}
	if len(t.extract.Extracted) == 0 && !t.profile.IsEmpty() {
		rec := r.Recommend(t.profile)
		if rec.Pass != recommend.PassExact {
			t.res.Response = missingPrompt(missing, t.profile)
			return true
		}
		t.rec = &rec
		t.res.UpdatedStage = StageRecommend
		t.res.Response = replyFoundMatches + gapsNote(missing)
		t.res.ShowRecommendations = true
		return false
	}
	t.res.Response = missingPrompt(missing, t.profile)
	return true
}

func (t *turn) recommendFeedback() {
	switch classifyFeedback(t.lower) {
	case feedbackPositive:
		t.res.UpdatedStage = StageScheduling
		t.res.Response = replyOfferSchedule
		t.res.ShowScheduleOptions = true
		t.res.QuickReplies = interestedReplies
	case feedbackNegative:
		t.res.UpdatedStage = StageObjection
		t.res.Response = replyAskObjection
		t.res.QuickReplies = objectionReplies
	case feedbackDetails:
		t.res.Response = propertyDetails(t.profile)
		t.res.QuickReplies = detailReplies
	default:
		t.res.Response = replyMoreOptions
		t.res.QuickReplies = moreOptionsReplies
	}
	t.res.ShowRecommendations = true
}

func (t *turn) scheduling() {
	t.res.ShowScheduleOptions = true
	if wantsScheduling(t.lower) {
		t.res.UpdatedStage = StageFollowUp
		t.res.Response = replyScheduleChannels
		t.res.QuickReplies = channelReplies
		return
	}
	t.res.Response = replyScheduleAgain
}

// objection handles stage 5: it drops the field the user objected to, picks up a
// replacement named in the same utterance, and goes back to recommendations.
func (t *turn) objection() {
	var field requirement.Field
	switch classifyObjection(t.lower) {
	case objectionLocation:
		field = requirement.FieldCity
		t.res.Response = replyAdjustLocation
	case objectionPrice:
		field = requirement.FieldBudget
		t.res.Response = replyAdjustBudget
	case objectionType:
		field = requirement.FieldType
		t.res.Response = replyAdjustType
	default:
		t.res.Response = replyAdjustGeneric
	}

	if field != "" && t.profile.Has(field) {
		t.profile.Clear(field)
		t.res.Cleared = appendUnique(t.res.Cleared, field)
		refill := extractor.Extract(t.lower, t.profile)
		t.profile = refill.Profile
		t.res.Extracted = appendUnique(t.res.Extracted, refill.Extracted...)
	}

	t.res.UpdatedStage = StageRecommend
	t.res.ShowRecommendations = true
}

func (t *turn) followUp() {
	t.res.UpdatedStage = StageClosed
	t.res.Response = followUpReply(t.profile)
	t.res.QuickReplies = followUpReplies
}

// followUpReply confirms the noted requirements before offering to send a summary.
func followUpReply(p requirement.Profile) string {
	if summary := p.String(); summary != "" {
		return replyFollowUpNoted + " (" + summary + "). " + replyFollowUpAsk
	}
	return replyFollowUpNoted + ". " + replyFollowUpAsk
}

func appendUnique(fields []requirement.Field, add ...requirement.Field) []requirement.Field {
	for _, f := range add {
		dup := false
		for _, have := range fields {
			if have == f {
				dup = true
				break
			}
		}
		if !dup {
			fields = append(fields, f)
		}
	}
	return fields
}
