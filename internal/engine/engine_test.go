package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/righthome-ai/property-copilot/internal/catalog"
	"github.com/righthome-ai/property-copilot/internal/recommend"
	"github.com/righthome-ai/property-copilot/internal/requirement"
)

func newEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	store, err := catalog.Default()
	require.NoError(t, err)
	return New(recommend.NewScorer(store), opts...)
}

func cityProfile(t *testing.T, name string) requirement.Profile {
	t.Helper()
	c, ok := requirement.LookupCity(name)
	require.True(t, ok, name)
	var p requirement.Profile
	p.SetCity(c)
	return p
}

func runTurn(t *testing.T, e *Engine, utterance string, p requirement.Profile, stage int) Result {
	t.Helper()
	res, err := e.Turn(context.Background(), Input{Utterance: utterance, Profile: p, Stage: stage})
	require.NoError(t, err)
	return res
}

func TestTurn_FlatInGurgaonFromGreeting(t *testing.T) {
	res := runTurn(t, newEngine(t), "I want to buy a flat in Gurgaon", requirement.Profile{}, StageGreeting)

	assert.Equal(t, "Gurgaon", res.UpdatedRequirementMap.City)
	assert.Equal(t, requirement.TypeApartment, res.UpdatedRequirementMap.Type)
	assert.Equal(t, StageGathering, res.UpdatedStage)
	assert.Equal(t, []requirement.Field{requirement.FieldPurpose, requirement.FieldBudget}, res.MissingFields)
	assert.Equal(t,
		"Great! I'd like to understand your requirements better. Are you buying for personal use, investment, or commercial purposes?",
		res.Response)
	assert.False(t, res.ShowRecommendations)
	assert.Empty(t, res.Recommendations)
}

func TestTurn_GreetingWithEmptyProfile(t *testing.T) {
	res := runTurn(t, newEngine(t), "hello there", requirement.Profile{}, StageGreeting)

	assert.Equal(t, StageGreeting, res.UpdatedStage)
	assert.Equal(t, replyAskBasics, res.Response)
	assert.Equal(t, StarterReplies, res.QuickReplies)
	assert.Equal(t, []requirement.Field{requirement.FieldCity, requirement.FieldPurpose, requirement.FieldBudget}, res.MissingFields)
}

func TestTurn_GreetingWithEverythingGoesStraightToRecommendations(t *testing.T) {
	res := runTurn(t, newEngine(t), "investment in Mumbai around 8 crore", requirement.Profile{}, StageGreeting)

	assert.Equal(t, StageRecommend, res.UpdatedStage)
	assert.True(t, res.ShowRecommendations)
	assert.Empty(t, res.MissingFields)
	require.NotEmpty(t, res.Recommendations)
	assert.Equal(t, 5, res.Recommendations[0].ID)
	assert.Equal(t, recommend.PassExact, res.Pass)
}

func TestTurn_ZeroStageIsTreatedAsGreeting(t *testing.T) {
	res := runTurn(t, newEngine(t), "hi", requirement.Profile{}, 0)
	assert.Equal(t, StageGreeting, res.UpdatedStage)
}

func TestTurn_GatheringPromptsInOrder(t *testing.T) {
	e := newEngine(t)
	p := cityProfile(t, "Mumbai")

	res := runTurn(t, e, "for personal use", p, StageGathering)
	assert.Equal(t, StageGathering, res.UpdatedStage)
	assert.Equal(t, requirement.PurposePersonal, res.UpdatedRequirementMap.Purpose)
	assert.Equal(t, "What's your budget range for this property? (in Crore)", res.Response)

	res = runTurn(t, e, "about 8.5 crore", res.UpdatedRequirementMap, StageGathering)
	assert.Equal(t, StageRecommend, res.UpdatedStage)
	assert.Equal(t, replyFoundMatches, res.Response)
	assert.True(t, res.ShowRecommendations)
	assert.NotEmpty(t, res.Recommendations)
}

func TestTurn_GatheringMovesOnWhenUserAddsNothing(t *testing.T) {
	p := cityProfile(t, "Gurgaon")
	p.Type = requirement.TypeApartment

	res := runTurn(t, newEngine(t), "not sure yet, show me what you have", p, StageGathering)

	assert.Equal(t, StageRecommend, res.UpdatedStage)
	assert.Equal(t, replyFoundMatches+" Share your purpose and budget and I'll narrow these down.", res.Response)
	assert.Equal(t, []requirement.Field{requirement.FieldPurpose, requirement.FieldBudget}, res.MissingFields)
	assert.Len(t, res.Recommendations, 2)
}

func TestTurn_PositiveFeedback(t *testing.T) {
	p := cityProfile(t, "Gurgaon")

	res := runTurn(t, newEngine(t), "this looks great", p, StageRecommend)

	assert.Equal(t, StageScheduling, res.UpdatedStage)
	assert.True(t, res.ShowScheduleOptions)
	assert.True(t, res.ShowRecommendations)
	assert.Equal(t, interestedReplies, res.QuickReplies)
}

func TestTurn_FeedbackClassification(t *testing.T) {
	tests := []struct {
		utterance string
		stage     int
		reply     string
	}{
		{utterance: "I don't like these", stage: StageObjection, reply: replyAskObjection},
		{utterance: "nope", stage: StageObjection, reply: replyAskObjection},
		{utterance: "show me other options", stage: StageObjection, reply: replyAskObjection},
		{utterance: "yes", stage: StageScheduling, reply: replyOfferSchedule},
		{utterance: "I'm interested", stage: StageScheduling, reply: replyOfferSchedule},
		{utterance: "tell me more", stage: StageRecommend},
		{utterance: "more details please", stage: StageRecommend},
		{utterance: "I'd like more details", stage: StageScheduling, reply: replyOfferSchedule},
		{utterance: "tell me more, looks great", stage: StageScheduling, reply: replyOfferSchedule},
		{utterance: "hmm", stage: StageRecommend, reply: replyMoreOptions},
		{utterance: "we know the area", stage: StageRecommend, reply: replyMoreOptions},
	}

	e := newEngine(t)
	p := cityProfile(t, "Gurgaon")
	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			res := runTurn(t, e, tt.utterance, p, StageRecommend)
			assert.Equal(t, tt.stage, res.UpdatedStage)
			assert.True(t, res.ShowRecommendations)
			if tt.reply != "" {
				assert.Equal(t, tt.reply, res.Response)
			}
		})
	}
}

func TestTurn_DetailsBlurb(t *testing.T) {
	p := cityProfile(t, "Dubai")
	p.Type = requirement.TypeVilla

	res := runTurn(t, newEngine(t), "tell me more", p, StageRecommend)

	assert.Equal(t,
		"These villas offer premium amenities including 24/7 security, swimming pools, gyms, and landscaped gardens. "+
			"Dubai properties come with world-class amenities and tax-free benefits. "+
			"Would you like to know more about a specific property?",
		res.Response)
	assert.Equal(t, detailReplies, res.QuickReplies)
}

func TestTurn_Scheduling(t *testing.T) {
	e := newEngine(t)
	p := cityProfile(t, "Gurgaon")

	res := runTurn(t, e, "I'd love to visit this weekend", p, StageScheduling)
	assert.Equal(t, StageFollowUp, res.UpdatedStage)
	assert.True(t, res.ShowScheduleOptions)
	assert.Equal(t, channelReplies, res.QuickReplies)

	res = runTurn(t, e, "hmm not sure", p, StageScheduling)
	assert.Equal(t, StageScheduling, res.UpdatedStage)
	assert.True(t, res.ShowScheduleOptions)
	assert.Equal(t, replyScheduleAgain, res.Response)
}

func TestTurn_ObjectionPrice(t *testing.T) {
	p := cityProfile(t, "Mumbai")
	p.Budget = 2e7

	res := runTurn(t, newEngine(t), "the price is too expensive", p, StageObjection)

	assert.Equal(t, StageRecommend, res.UpdatedStage)
	assert.False(t, res.UpdatedRequirementMap.Has(requirement.FieldBudget))
	assert.Equal(t, "Mumbai", res.UpdatedRequirementMap.City)
	assert.Equal(t, replyAdjustBudget, res.Response)
	assert.True(t, res.ShowRecommendations)
	assert.Contains(t, res.Cleared, requirement.FieldBudget)
}

func TestTurn_ObjectionLocationPicksUpNewCity(t *testing.T) {
	p := cityProfile(t, "Gurgaon")
	p.Type = requirement.TypeApartment

	res := runTurn(t, newEngine(t), "location is not ideal, try Mumbai", p, StageObjection)

	assert.Equal(t, StageRecommend, res.UpdatedStage)
	assert.Equal(t, "Mumbai", res.UpdatedRequirementMap.City)
	assert.Equal(t, requirement.UnitCrore, res.UpdatedRequirementMap.BudgetUnit)
	assert.Equal(t, replyAdjustLocation, res.Response)
}

func TestTurn_ObjectionType(t *testing.T) {
	p := cityProfile(t, "Gurgaon")
	p.Type = requirement.TypeVilla

	res := runTurn(t, newEngine(t), "wrong kind of home", p, StageObjection)
	assert.False(t, res.UpdatedRequirementMap.Has(requirement.FieldType))
	assert.Equal(t, replyAdjustType, res.Response)

	res = runTurn(t, newEngine(t), "just find something better", p, StageObjection)
	assert.Equal(t, requirement.TypeVilla, res.UpdatedRequirementMap.Type)
	assert.Equal(t, replyAdjustGeneric, res.Response)
}

func TestTurn_FollowUpAndClosing(t *testing.T) {
	e := newEngine(t)
	p := cityProfile(t, "Gurgaon")

	res := runTurn(t, e, "WhatsApp me the details", p, StageFollowUp)
	assert.Equal(t, StageClosed, res.UpdatedStage)
	assert.Equal(t, followUpReplies, res.QuickReplies)
	assert.Equal(t, replyFollowUpNoted+" (City: Gurgaon). "+replyFollowUpAsk, res.Response)

	res = runTurn(t, e, "ok", requirement.Profile{}, StageFollowUp)
	assert.Equal(t, replyFollowUpNoted+". "+replyFollowUpAsk, res.Response)

	for _, stage := range []int{StageClosed, 12} {
		res = runTurn(t, e, "yes please", p, stage)
		assert.Equal(t, stage, res.UpdatedStage)
		assert.Equal(t, replyClosing, res.Response)
		assert.False(t, res.ShowRecommendations)
	}
}

func TestTurn_ResetFromAnyStage(t *testing.T) {
	e := newEngine(t)
	p := cityProfile(t, "Dubai")
	p.Budget = 3e6
	p.Purpose = requirement.PurposeInvestment

	for stage := StageGreeting; stage <= StageClosed+1; stage++ {
		res := runTurn(t, e, "let's start over", p, stage)
		assert.True(t, res.UpdatedRequirementMap.IsEmpty())
		assert.Equal(t, StageGreeting, res.UpdatedStage)
		assert.Equal(t, StarterReplies, res.QuickReplies)
		assert.Empty(t, res.Recommendations)
		assert.True(t, res.Reset)
	}
}

func TestTurn_EmptyRecommendationsOverrideReply(t *testing.T) {
	p := cityProfile(t, "Sharjah")

	for _, tc := range []struct {
		utterance string
		stage     int
	}{
		{utterance: "this looks great", stage: StageRecommend},
		{utterance: "something else please", stage: StageObjection},
	} {
		res := runTurn(t, newEngine(t), tc.utterance, p, tc.stage)
		assert.True(t, res.ShowRecommendations)
		assert.Empty(t, res.Recommendations)
		assert.Equal(t, replyNoMatches, res.Response)
		assert.Equal(t, []string{"Adjust budget", "Change location", "Modify property type"}, res.QuickReplies)
		assert.Equal(t, recommend.PassEmpty, res.Pass)
	}
}

func TestTurn_MissingFieldsAlwaysRequiredSubset(t *testing.T) {
	e := newEngine(t)
	utterances := []string{"hi", "flat in Gurgaon", "for investment", "85 lakh", "looks good", "visit", "ok", "thanks"}

	p := requirement.Profile{}
	stage := StageGreeting
	for _, u := range utterances {
		res := runTurn(t, e, u, p, stage)
		assert.Equal(t, res.UpdatedRequirementMap.MissingFields(), res.MissingFields)
		for _, f := range res.MissingFields {
			assert.Contains(t, requirement.RequiredFields, f)
		}
		p, stage = res.UpdatedRequirementMap, res.UpdatedStage
	}
	assert.Equal(t, StageClosed, stage)
}

func TestTurn_DoesNotMutateInput(t *testing.T) {
	p := cityProfile(t, "Mumbai")
	p.SetBedrooms(requirement.BedroomCount(2))
	before := p.Clone()

	_ = runTurn(t, newEngine(t), "change bhk to 3 bhk, price is too expensive", p, StageObjection)
	assert.Equal(t, before, p)
}

func TestTurn_Phraser(t *testing.T) {
	var got PhraseRequest
	phraser := PhraserFunc(func(_ context.Context, req PhraseRequest) (string, error) {
		got = req
		return "  Which city should I search in?  ", nil
	})

	res := runTurn(t, newEngine(t, WithPhraser(phraser)), "hello", requirement.Profile{}, StageGreeting)
	assert.Equal(t, "Which city should I search in?", res.Response)
	assert.True(t, res.Phrased)
	assert.Equal(t, replyAskBasics, got.Canned)
	assert.Equal(t, StageGreeting, got.Stage)
}

func TestTurn_PhraserNotUsedOutsideGathering(t *testing.T) {
	calls := 0
	phraser := PhraserFunc(func(context.Context, PhraseRequest) (string, error) {
		calls++
		return "rephrased", nil
	})
	e := newEngine(t, WithPhraser(phraser))

	res := runTurn(t, e, "yes", cityProfile(t, "Gurgaon"), StageRecommend)
	assert.Equal(t, replyOfferSchedule, res.Response)
	assert.Zero(t, calls)
}

func TestTurn_PhraserFailureKeepsStructuredResult(t *testing.T) {
	boom := errors.New("upstream timeout")
	e := newEngine(t, WithPhraser(PhraserFunc(func(context.Context, PhraseRequest) (string, error) {
		return "", boom
	})))

	res, err := e.Turn(context.Background(), Input{Utterance: "flat in Gurgaon", Stage: StageGreeting})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPhrasing))
	assert.Equal(t, StageGathering, res.UpdatedStage)
	assert.Equal(t, "Gurgaon", res.UpdatedRequirementMap.City)
	assert.Contains(t, res.Response, "Are you buying for personal use")
	assert.False(t, res.Phrased)
}
