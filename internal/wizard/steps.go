package wizard

// Step identifica la pantalla actual del wizard. 0 es la landing.
type Step int

const (
	StepLanding Step = iota
	StepType
	StepIdentity
	StepPersonality
	StepKnowledge
	StepReview
	StepTraining
)

// LastStep es el tope para Advance.
const LastStep = StepTraining

var stepTitles = map[Step]string{
	StepLanding:     "Start",
	StepType:        "Type",
	StepIdentity:    "Identity",
	StepPersonality: "Personality",
	StepKnowledge:   "Knowledge",
	StepReview:      "Review",
	StepTraining:    "Training",
}

// Title devuelve el titulo visible del paso.
func (s Step) Title() string {
	if t, ok := stepTitles[s]; ok {
		return t
	}
	return ""
}
