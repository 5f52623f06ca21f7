// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/pdiddy/journal-club/pkg/types"
)

// RoleKind is the persona a Role plays in the journal club.
type RoleKind int

const (
	RoleStudent RoleKind = iota
	RolePostdoc
	RoleStaff
	RoleTranslator
)

func (k RoleKind) String() string {
	switch k {
	case RoleStudent:
		return "student"
	case RolePostdoc:
		return "postdoc"
	case RoleStaff:
		return "staff"
	case RoleTranslator:
		return "translator"
	default:
		return "unknown"
	}
}

// Role binds a persona to its instruction text and the model tier it runs on.
// Roles are values; build them with the constructors below.
type Role struct {
	Kind         RoleKind
	Name         string
	Instructions string
	Tier         types.ModelTier
}

// DefaultInterests is the subject policy of the group.
const DefaultInterests = `You and your colleagues are mainly interested in hep-ph and hep-th.
Subjects you are interested in include:
- Particle phenomenology
- Quantum field theory
- Cosmology
- Quantum information
- Astrophysics
Subjects you are not interested in include:
- Nuclear physics
- Meson spectroscopy
- Nuclear structure
- Lattice QCD
- Overly technical methods such as machine learning
- Overly exotic subjects such as Lorentz violation`

const (
	studentPersona = `You are a graduate student in theoretical elementary particle physics.
You assist the senior researchers of your group. You are not expected to know everything, but you are expected to find the information you need and summarize it.`

	postdocPersona = `You are a postdoc in theoretical elementary particle physics.
You know the topics close to your own research well, and you have a broad knowledge of and interest in elementary particle physics theory.`

	staffPersona = `You are a staff researcher in theoretical elementary particle physics.
You know a wide range of topics in elementary particle physics theory well.`

	researcherStance = `As a researcher you are skeptical of other researchers' results, and you are honest about your own understanding: when you do not understand something, you say so.`

	selectorDuty = `You and your colleagues go through all the new papers that appear on arXiv every day.
You skip overly technical papers and pick the ones that are interesting and bring new ideas. New experimental results are interesting as well. You choose based on the title, the abstract and the authors of each paper.`

	postdocDuty = `You are attending a journal club meeting about a new paper. This is the first time you see the paper and hear its summary. Be critical of both the paper and the summary, and ask questions. Naive questions are welcome.`

	staffDuty = `You are attending a journal club meeting about a new paper. You have already read the paper and formed your own opinion. You remain critical, but your job is to complete the graduate student's summary and to answer the postdoc's questions and criticism.`

	translatorInstructions = `You are a translator. You translate the text you are given into Japanese.`
)

var instructionsTmpl = template.Must(template.New("instructions").Parse(`{{.Persona}}
{{.Stance}}
{{.Interests}}{{if .Duty}}
{{.Duty}}{{end}}`))

func renderInstructions(persona, interests, duty string) string {
	if interests == "" {
		interests = DefaultInterests
	}
	var buf bytes.Buffer
	err := instructionsTmpl.Execute(&buf, struct {
		Persona, Stance, Interests, Duty string
	}{persona, researcherStance, interests, duty})
	if err != nil {
		// The template only interpolates strings.
		panic(fmt.Sprintf("rendering instructions: %v", err))
	}
	return buf.String()
}

// Selector is the student persona choosing the day's candidates.
func Selector(interests string, tier types.ModelTier) Role {
	return Role{
		Kind:         RoleStudent,
		Name:         "selector",
		Instructions: renderInstructions(studentPersona, interests, selectorDuty),
		Tier:         tier,
	}
}

// Student is the presenter who summarizes the paper.
func Student(interests string, tier types.ModelTier) Role {
	return Role{
		Kind:         RoleStudent,
		Name:         "student",
		Instructions: renderInstructions(studentPersona, interests, ""),
		Tier:         tier,
	}
}

// Postdoc is the critic who only hears the summary.
func Postdoc(interests string, tier types.ModelTier) Role {
	return Role{
		Kind:         RolePostdoc,
		Name:         "postdoc",
		Instructions: renderInstructions(postdocPersona, interests, postdocDuty),
		Tier:         tier,
	}
}

// Staff answers the critique with the full summarization transcript at hand.
func Staff(interests string, tier types.ModelTier) Role {
	return Role{
		Kind:         RoleStaff,
		Name:         "staff",
		Instructions: renderInstructions(staffPersona, interests, staffDuty),
		Tier:         tier,
	}
}

// Translator renders the discussion in Japanese.
func Translator(tier types.ModelTier) Role {
	return Role{
		Kind:         RoleTranslator,
		Name:         "translator",
		Instructions: translatorInstructions,
		Tier:         tier,
	}
}
