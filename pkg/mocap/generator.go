package mocap

import (
	"fmt"
	"math"
	"time"
)

// Generator produces a synthetic skeleton moving on slow sinusoids.
// It is not safe for concurrent use.
type Generator struct {
	names []string
	seq   uint64
	start time.Time
}

func NewGenerator(joints int, start time.Time) *Generator {
	if joints <= 0 {
		joints = 1
	}
	g := &Generator{names: make([]string, joints), start: start}
	for i := range g.names {
		g.names[i] = fmt.Sprintf("joint_%02d", i)
	}
	return g
}

// Next returns the sample for time now. Sequence numbers start at 1.
func (g *Generator) Next(now time.Time) Sample {
	g.seq++
	t := now.Sub(g.start).Seconds()
	s := Sample{Seq: g.seq, Timestamp: now.UnixNano(), Joints: make([]Joint, len(g.names))}
	for i, name := range g.names {
		phase := float64(i) * 0.3
		angle := 0.5 * math.Sin(t+phase)
		s.Joints[i] = Joint{
			Name: name,
			Position: [3]float32{
				float32(math.Cos(t + phase)),
				float32(1 + 0.1*float64(i)),
				float32(math.Sin(t + phase)),
			},
			// rotation about the vertical axis
			Rotation: [4]float32{0, float32(math.Sin(angle / 2)), 0, float32(math.Cos(angle / 2))},
		}
	}
	return s
}
