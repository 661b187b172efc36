package compose

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafael/autoapply/internal/llm"
	"github.com/rafael/autoapply/internal/types"
)

// fakeLLMClient returns responses keyed by a prompt substring, so one
// fake can serve language detection, letter generation and recipient
// inference in the same Compose call.
type fakeLLMClient struct {
	byPromptContains map[string]string
	err              error
	calls            int
}

func (f *fakeLLMClient) GenerateContent(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	return f.respond(prompt)
}

func (f *fakeLLMClient) GenerateJSON(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	return f.respond(prompt)
}

func (f *fakeLLMClient) respond(prompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	for key, response := range f.byPromptContains {
		if strings.Contains(prompt, key) {
			return response, nil
		}
	}
	return "", errors.New("no canned response for prompt")
}

func (f *fakeLLMClient) Close() error { return nil }

func newTestComposer(client llm.Client) *Composer {
	c := NewComposer(client)
	c.sleep = func(time.Duration) {}
	return c
}

func testProfile() *types.CandidateProfile {
	return &types.CandidateProfile{
		Name:   "João Silva",
		Email:  "joao@x.com",
		Skills: []string{"React", "Node.js", "PostgreSQL", "Docker"},
		Experience: []types.Experience{
			{Title: "Senior Developer", Company: "Initech", Duration: "2021 - 2024", Technologies: []string{"React", "Node.js"}, YearsInRole: 3},
		},
		TotalYearsExperience: 3,
	}
}

func testJob() types.JobPosting {
	return types.JobPosting{
		Title:       "Backend Developer",
		Company:     "Acme",
		Description: "We are looking for a backend developer to join our team. Contact hr@acme.com to apply.",
		URL:         "https://jobs.test/acme",
		CompanyURL:  "https://www.acme.com",
	}
}

const goodLetter = `Dear hiring team,

I am writing to express my interest in the Backend Developer position at Acme. My name is João Silva and I bring 3 years of hands-on experience building production services.

At Initech I designed and operated React and Node.js systems that served a growing user base, with PostgreSQL and Docker underpinning the platform.

I admire Acme's product focus and would welcome the chance to discuss how my background fits your roadmap.

João Silva`

func TestComposeHappyPath(t *testing.T) {
	client := &fakeLLMClient{byPromptContains: map[string]string{
		"exactly one token": "en",
		"cover letter":      goodLetter,
	}}

	draft, err := newTestComposer(client).Compose(context.Background(), testProfile(), testJob())
	require.NoError(t, err)

	assert.Equal(t, "en", draft.Language)
	assert.Equal(t, goodLetter, draft.CoverLetter)
	assert.False(t, draft.UsedFallback)
	assert.Equal(t, "Application for Backend Developer - João Silva", draft.Subject)
	// The address written in the description wins without LLM inference.
	assert.Equal(t, "hr@acme.com", draft.Recipient)
	assert.Equal(t, types.StatusPending, draft.Status)
	assert.NotEqual(t, "", draft.ID.String())
}

func TestComposeFallbackLetterOnLLMFailure(t *testing.T) {
	client := &fakeLLMClient{err: errors.New("model unavailable")}

	draft, err := newTestComposer(client).Compose(context.Background(), testProfile(), testJob())
	require.NoError(t, err)

	assert.True(t, draft.UsedFallback)
	// The template interpolates name, top skills and latest experience.
	assert.Contains(t, draft.CoverLetter, "João Silva")
	assert.Contains(t, draft.CoverLetter, "React, Node.js, PostgreSQL")
	assert.Contains(t, draft.CoverLetter, "Senior Developer")
	assert.Contains(t, draft.CoverLetter, "Backend Developer")
	assert.Contains(t, draft.CoverLetter, "Acme")
}

func TestComposeRejectsWeakLetter(t *testing.T) {
	client := &fakeLLMClient{byPromptContains: map[string]string{
		"exactly one token": "en",
		"cover letter":      "Dear team, I want this job. Thanks.",
	}}

	draft, err := newTestComposer(client).Compose(context.Background(), testProfile(), testJob())
	require.NoError(t, err)

	assert.True(t, draft.UsedFallback)
	assert.Contains(t, draft.CoverLetter, "João Silva")
}

func TestComposeRetriesTransportErrors(t *testing.T) {
	client := &fakeLLMClient{err: errors.New("timeout")}
	c := newTestComposer(client)

	_, err := c.Compose(context.Background(), testProfile(), testJob())
	require.NoError(t, err)

	// One detection call plus three letter attempts. Recipient inference
	// is skipped because the description already carries an address.
	assert.Equal(t, 4, client.calls)
}

func TestComposeNilClient(t *testing.T) {
	job := testJob()
	job.Description = "Procuramos uma pessoa desenvolvedora para o nosso time. Você vai trabalhar com Go em uma equipe remota. Envie sua candidatura para o e-mail hr@acme.com e não esqueça do currículo."

	draft, err := newTestComposer(nil).Compose(context.Background(), testProfile(), job)
	require.NoError(t, err)

	assert.Equal(t, LangPortuguese, draft.Language)
	assert.True(t, draft.UsedFallback)
	assert.Contains(t, draft.CoverLetter, "Prezado recrutador")
	assert.Equal(t, "Candidatura para Backend Developer - João Silva", draft.Subject)
}

func TestComposeNoRecipient(t *testing.T) {
	job := testJob()
	job.Description = "We are looking for a backend developer to join our team."
	job.CompanyURL = ""
	client := &fakeLLMClient{byPromptContains: map[string]string{
		"exactly one token": "en",
		"cover letter":      goodLetter,
		"what email":        "null",
	}}

	draft, err := newTestComposer(client).Compose(context.Background(), testProfile(), job)

	var nre *NoRecipientFoundError
	require.ErrorAs(t, err, &nre)
	assert.Equal(t, "Acme", nre.Company)
	// The draft is still returned for preview.
	require.NotNil(t, draft)
	assert.Empty(t, draft.Recipient)
	assert.NotEmpty(t, draft.CoverLetter)
}

func TestValidateLetter(t *testing.T) {
	profile := testProfile()
	job := testJob()

	tests := []struct {
		name   string
		letter string
		ok     bool
	}{
		{"Good letter", goodLetter, true},
		{"Too short", "Hi, hire João Silva for Acme.", false},
		{"Name missing", strings.Repeat("A generic letter about the Backend Developer role. ", 5), false},
		{"No concrete anchor", "João Silva " + strings.Repeat("writes many words without naming anything concrete ", 5), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateLetter(tt.letter, profile, job)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				var weak *WeakGenerationError
				assert.ErrorAs(t, err, &weak)
			}
		})
	}
}
