// Package fetch - platform.go provides job board detection and
// board-specific content selectors for description pages.
package fetch

import (
	"net/url"
	"strings"
)

// Platform represents a known job board or ATS platform.
type Platform string

const (
	// PlatformWeWorkRemotely is the We Work Remotely board
	PlatformWeWorkRemotely Platform = "weworkremotely"
	// PlatformRemotive is the Remotive board
	PlatformRemotive Platform = "remotive"
	// PlatformGreenhouse is the Greenhouse ATS platform
	PlatformGreenhouse Platform = "greenhouse"
	// PlatformLever is the Lever ATS platform
	PlatformLever Platform = "lever"
	// PlatformUnknown is an unrecognized platform
	PlatformUnknown Platform = "unknown"
)

// DetectPlatform identifies the job board platform from a posting URL.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformUnknown
	}

	host := strings.ToLower(parsed.Host)

	if strings.Contains(host, "weworkremotely.com") {
		return PlatformWeWorkRemotely
	}
	if strings.Contains(host, "remotive.com") || strings.Contains(host, "remotive.io") {
		return PlatformRemotive
	}
	if strings.Contains(host, "greenhouse.io") {
		return PlatformGreenhouse
	}
	if strings.Contains(host, "lever.co") {
		return PlatformLever
	}

	return PlatformUnknown
}

// PlatformContentSelectors returns content selectors optimized for a
// specific platform's posting pages.
func PlatformContentSelectors(platform Platform) []string {
	switch platform {
	case PlatformWeWorkRemotely:
		return []string{
			".listing-container",
			"#job-listing-show-container",
			".job",
			"main",
		}
	case PlatformRemotive:
		return []string{
			".job-description",
			".tw-job-description",
			"main",
		}
	case PlatformGreenhouse:
		return []string{
			".job__description.body",
			".job__description",
			".job-description__content",
			"#content",
		}
	case PlatformLever:
		return []string{
			".posting-page",
			".posting-description",
			".content",
		}
	default:
		return JobPostingSelectors()
	}
}

// PlatformNoiseSelectors returns noise exclusion selectors for a specific
// platform's posting pages.
func PlatformNoiseSelectors(platform Platform) []string {
	common := []string{
		"form",
		"#application-form",
		".application-form",
		".apply-button-container",
		".social-share",
		".share-buttons",
		".cookie-banner",
		".cookie-consent",
		".gdpr-notice",
	}

	switch platform {
	case PlatformWeWorkRemotely:
		return append(common,
			".apply-now",
			".similar-jobs",
			".company-card--similar-jobs",
		)
	case PlatformGreenhouse:
		return append(common,
			".application--wrapper",
			".voluntary-self-id",
			".post-apply",
		)
	case PlatformLever:
		return append(common,
			".apply-section",
			".lever-application-form",
			".posting-apply",
		)
	default:
		return common
	}
}
