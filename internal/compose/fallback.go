package compose

import (
	"fmt"
	"strings"

	"github.com/rafael/autoapply/internal/types"
)

// fallbackLetter builds the deterministic cover letter used when the LLM
// is unavailable or its output fails validation. It interpolates the
// candidate's name, top skills and most recent experience into a fixed
// per-language template.
func fallbackLetter(profile *types.CandidateProfile, job types.JobPosting, language string) string {
	skills := profile.Skills
	if len(skills) > 3 {
		skills = skills[:3]
	}
	skillsText := strings.Join(skills, ", ")

	var experienceText string
	if len(profile.Experience) > 0 {
		exp := profile.Experience[0]
		techs := strings.Join(exp.Technologies, ", ")
		if techs == "" {
			techs = skillsText
		}
		switch language {
		case LangPortuguese:
			experienceText = fmt.Sprintf("Em minha experiência mais recente como %s na %s, trabalhei com %s.", exp.Title, exp.Company, techs)
		case LangSpanish:
			experienceText = fmt.Sprintf("En mi experiencia más reciente como %s en %s, trabajé con %s.", exp.Title, exp.Company, techs)
		default:
			experienceText = fmt.Sprintf("In my most recent role as %s at %s, I worked with %s.", exp.Title, exp.Company, techs)
		}
	}

	var b strings.Builder
	switch language {
	case LangPortuguese:
		b.WriteString("Prezado recrutador,\n\n")
		fmt.Fprintf(&b, "Gostaria de manifestar meu interesse na vaga de %s na %s.\n\n", job.Title, job.Company)
		fmt.Fprintf(&b, "Possuo experiência relevante em %s e acredito que posso contribuir significativamente para a equipe.\n\n", skillsText)
		if experienceText != "" {
			b.WriteString(experienceText + "\n\n")
		}
		b.WriteString("Ficarei feliz em detalhar minhas experiências em uma entrevista.\n\n")
		b.WriteString("Atenciosamente,\n")
	case LangSpanish:
		b.WriteString("Estimado reclutador,\n\n")
		fmt.Fprintf(&b, "Me gustaría expresar mi interés en la posición de %s en %s.\n\n", job.Title, job.Company)
		fmt.Fprintf(&b, "Tengo experiencia relevante en %s y creo que puedo contribuir significativamente al equipo.\n\n", skillsText)
		if experienceText != "" {
			b.WriteString(experienceText + "\n\n")
		}
		b.WriteString("Estaré encantado de detallar mi experiencia en una entrevista.\n\n")
		b.WriteString("Atentamente,\n")
	default:
		b.WriteString("Dear recruiter,\n\n")
		fmt.Fprintf(&b, "I would like to express my interest in the %s position at %s.\n\n", job.Title, job.Company)
		fmt.Fprintf(&b, "I have relevant experience with %s and believe I can contribute meaningfully to the team.\n\n", skillsText)
		if experienceText != "" {
			b.WriteString(experienceText + "\n\n")
		}
		b.WriteString("I would be glad to discuss my experience in an interview.\n\n")
		b.WriteString("Best regards,\n")
	}
	b.WriteString(profile.Name)

	return b.String()
}

// subjectFor builds the email subject line in the letter's language.
func subjectFor(profile *types.CandidateProfile, job types.JobPosting, language string) string {
	switch language {
	case LangEnglish:
		return fmt.Sprintf("Application for %s - %s", job.Title, profile.Name)
	case LangSpanish:
		return fmt.Sprintf("Candidatura para %s - %s", job.Title, profile.Name)
	default:
		return fmt.Sprintf("Candidatura para %s - %s", job.Title, profile.Name)
	}
}
