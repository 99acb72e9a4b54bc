package domain

import "time"

const (
	PersonaStatusActive   = "active"
	PersonaStatusTraining = "training"
	PersonaStatusInactive = "inactive"

	VisibilityPrivate     = "private"
	VisibilityPublic      = "public"
	VisibilityMarketplace = "marketplace"
)

// Modelos base disponibles para el entrenamiento.
const (
	ModelGeminiFlash = "gemini-2.5-flash"
	ModelGeminiPro   = "gemini-3-pro"
)

// Estrategias de learning rate.
const (
	LearningRateAdaptive = "adaptive"
	LearningRateConstant = "constant"
	LearningRateCosine   = "cosine"
)

const (
	EpochsMin     = 1
	EpochsMax     = 50
	EpochsDefault = 10
)

// TrainingConfig describe el entrenamiento simulado elegido en el paso de Training.
type TrainingConfig struct {
	Model        string `json:"model" yaml:"model"`
	Epochs       int    `json:"epochs" yaml:"epochs"`
	LearningRate string `json:"learning_rate" yaml:"learning_rate"`
}

// DefaultTrainingConfig devuelve la configuracion inicial del wizard.
func DefaultTrainingConfig() TrainingConfig {
	return TrainingConfig{
		Model:        ModelGeminiFlash,
		Epochs:       EpochsDefault,
		LearningRate: LearningRateAdaptive,
	}
}

// Normalize aplica clamp a las epocas y reemplaza valores desconocidos por los default.
func (c TrainingConfig) Normalize() TrainingConfig {
	def := DefaultTrainingConfig()
	switch c.Model {
	case ModelGeminiFlash, ModelGeminiPro:
	default:
		c.Model = def.Model
	}
	switch c.LearningRate {
	case LearningRateAdaptive, LearningRateConstant, LearningRateCosine:
	default:
		c.LearningRate = def.LearningRate
	}
	if c.Epochs < EpochsMin {
		c.Epochs = EpochsMin
	}
	if c.Epochs > EpochsMax {
		c.Epochs = EpochsMax
	}
	return c
}

// EstimatedMinutes es el tiempo estimado que se muestra en el resumen.
func (c TrainingConfig) EstimatedMinutes() int {
	return c.Epochs * 2
}

// EstimatedCost es el costo estimado en USD.
func (c TrainingConfig) EstimatedCost() float64 {
	return float64(c.Epochs) * 0.05
}

// PersonaIdentity resume tono y objetivo del persona.
type PersonaIdentity struct {
	Tone      string `json:"tone"`
	Objective string `json:"objective"`
}

// Persona es el registro terminado que el wizard entrega a la aplicacion.
type Persona struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id,omitempty"`
	Name        string          `json:"name"`
	Role        string          `json:"role"`
	Description string          `json:"description"`
	AvatarURL   string          `json:"avatar_url,omitempty"`
	Type        PersonaType     `json:"type"`
	Identity    PersonaIdentity `json:"identity"`
	Traits      Traits          `json:"traits"`
	Knowledge   []KnowledgeItem `json:"knowledge"`
	Training    TrainingConfig  `json:"training"`
	Status      string          `json:"status"`
	Visibility  string          `json:"visibility"`
	CreatedAt   time.Time       `json:"created_at"`
}
