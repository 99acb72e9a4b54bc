package wizard

import (
	"math"
	"strings"
	"time"
)

// Phase es la etiqueta derivada del progreso del entrenamiento.
type Phase string

const (
	PhaseTokenizing         Phase = "tokenizing"
	PhaseAllocatingCompute  Phase = "allocating compute"
	PhaseFineTuning         Phase = "fine-tuning"
	PhaseVerifyingAlignment Phase = "verifying alignment"
	PhaseFinalizing         Phase = "finalizing"
)

const ProgressMax = 100

// TrainingRun es el estado efimero de la simulacion. Solo existe tras Commit.
type TrainingRun struct {
	ProgressPercent int       `json:"progress_percent"`
	StartedAt       time.Time `json:"started_at"`
}

// PhaseFor deriva la fase a partir del porcentaje con cortes fijos.
func PhaseFor(progress int) Phase {
	switch {
	case progress < 15:
		return PhaseTokenizing
	case progress < 30:
		return PhaseAllocatingCompute
	case progress < 85:
		return PhaseFineTuning
	case progress < 95:
		return PhaseVerifyingAlignment
	default:
		return PhaseFinalizing
	}
}

// Message devuelve el texto de estado que acompaña a la fase.
func (p Phase) Message() string {
	switch p {
	case PhaseTokenizing:
		return "Tokenizing knowledge base vectors..."
	case PhaseAllocatingCompute:
		return "Allocating GPU cluster resources..."
	case PhaseFineTuning:
		return "Fine-tuning neural weights..."
	case PhaseVerifyingAlignment:
		return "Verifying safety alignment..."
	case PhaseFinalizing:
		return "Finalizing persona deployment..."
	}
	return "Initializing training sequence..."
}

// Metrics son valores cosmeticos; se recalculan en cada snapshot y nunca se guardan.
type Metrics struct {
	Epoch      int     `json:"epoch"`
	Epochs     int     `json:"epochs"`
	Loss       float64 `json:"loss"`
	Accuracy   float64 `json:"accuracy"`
	Throughput int     `json:"throughput"` // tok/sec
}

// ComputeMetrics es funcion pura de progreso y epocas configuradas.
func ComputeMetrics(progress, epochs int) Metrics {
	if epochs < 1 {
		epochs = 1
	}
	p := float64(clampProgress(progress))

	epoch := int(math.Ceil((p - 10) / 90 * float64(epochs)))
	if epoch > epochs {
		epoch = epochs
	}
	if epoch < 1 {
		epoch = 1
	}

	loss := math.Max(0.0042, 0.8*math.Exp(-p/20))
	accuracy := math.Min(99.8, 35+p*0.65)

	throughput := 0
	if progress > 5 {
		// Jitter determinista en lugar de aleatorio.
		throughput = 4200 + (clampProgress(progress)*7919)%300
	}

	return Metrics{
		Epoch:      epoch,
		Epochs:     epochs,
		Loss:       math.Round(loss*1e4) / 1e4,
		Accuracy:   math.Round(accuracy*10) / 10,
		Throughput: throughput,
	}
}

// LogLines arma la salida de "terminal" que se va revelando con el progreso.
func LogLines(progress int) []string {
	lines := []string{
		"system: initializing_tensors...",
		"gpu_0: allocating_memory_blocks...",
		"data_loader: batch_size=32 verified",
	}
	if progress > 10 {
		lines = append(lines, "model: loading_weights_checkpoint_v2.5")
	}
	if progress > 20 {
		lines = append(lines, "optimizer: adam_w initialized (lr=3e-4)")
	}
	if progress > 40 {
		lines = append(lines, "training: batch_142 loss=0.342 acc=68%")
	}
	if progress > 60 {
		lines = append(lines, "training: batch_289 loss=0.104 acc=89%")
	}
	msg := strings.ToLower(PhaseFor(progress).Message())
	lines = append(lines, "> "+strings.ReplaceAll(msg, " ", "_"))
	return lines
}

func clampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > ProgressMax {
		return ProgressMax
	}
	return p
}
