package compose

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/rafael/autoapply/internal/llm"
	"github.com/rafael/autoapply/internal/prompts"
	"github.com/rafael/autoapply/internal/types"
)

var recipientEmailRe = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// fallbackPrefix is the conventional mailbox guessed against the company
// domain when no address is written or inferred.
const fallbackPrefix = "jobs"

// resolveRecipient finds the application email for a job. The chain is:
// an address written in the description, then LLM inference, then a
// conventional prefix on the company domain. Exhaustion returns
// *NoRecipientFoundError.
func resolveRecipient(ctx context.Context, client llm.Client, job types.JobPosting) (string, error) {
	if email := recipientEmailRe.FindString(job.Description); email != "" {
		return email, nil
	}

	if client != nil {
		if email := inferRecipientLLM(ctx, client, job); email != "" {
			return email, nil
		}
	}

	if email := recipientFromDomain(job.CompanyURL); email != "" {
		return email, nil
	}

	return "", &NoRecipientFoundError{Company: job.Company}
}

func inferRecipientLLM(ctx context.Context, client llm.Client, job types.JobPosting) string {
	template := prompts.MustGet("composing.json", "infer-recipient")
	prompt := prompts.Format(template, map[string]string{
		"Company":     job.Company,
		"Description": truncate(job.Description, 2000),
	})

	response, err := client.GenerateContent(ctx, prompt, llm.TierLite)
	if err != nil {
		return ""
	}
	if strings.EqualFold(strings.TrimSpace(response), "null") {
		return ""
	}
	return recipientEmailRe.FindString(response)
}

// recipientFromDomain builds jobs@<domain> from the company website.
func recipientFromDomain(companyURL string) string {
	if companyURL == "" {
		return ""
	}
	parsed, err := url.Parse(companyURL)
	if err != nil || parsed.Host == "" {
		return ""
	}
	domain := strings.TrimPrefix(strings.ToLower(parsed.Host), "www.")
	if domain == "" {
		return ""
	}
	return fallbackPrefix + "@" + domain
}
