package render

import "github.com/jxl-go/jxl/internal/xlerr"

// StageKind tags which of the five stage shapes spec §4.6 defines a
// given Stage implements.
type StageKind int

const (
	StageInspect StageKind = iota
	StageInPlace
	StageInOut
	StageExtend
	StageSave
)

// ChannelType is the sample type a stage reads/writes for one channel,
// used to validate forward type inference between consecutive stages.
type ChannelType int

const (
	TypeF32 ChannelType = iota
	TypeU8
	TypeU16
)

// Stage is one step of a render pipeline.
type Stage struct {
	Kind     StageKind
	Name     string
	Channels []string

	// InOut-only: border and shift parameters (spec §4.6 InOut
	// contract).
	BorderX, BorderY int
	ShiftX, ShiftY   int

	// Apply performs the stage's work in place on the given buffer.
	// Inspect stages must not mutate fb; InPlace/InOut/Extend/Save
	// stages rewrite or populate it.
	Apply func(fb *FrameBuffer) error

	InputType, OutputType ChannelType
}

// Pipeline is a validated, ordered sequence of stages.
type Pipeline struct {
	Stages []Stage
}

// Builder accumulates stages and validates them against spec §4.6's
// constraints as each is appended.
type Builder struct {
	stages      []Stage
	usedOnce    map[string]bool
	channelType map[string]ChannelType
	pastExtend  bool
}

// NewBuilder starts a pipeline build seeded with the initial channel
// types (e.g. all TypeF32 straight out of modular/VarDCT decode).
func NewBuilder(initial map[string]ChannelType) *Builder {
	b := &Builder{
		usedOnce:    make(map[string]bool),
		channelType: make(map[string]ChannelType),
	}
	for k, v := range initial {
		b.channelType[k] = v
	}
	return b
}

// Append validates and adds one stage to an open, validated stage
// sequence.
func (b *Builder) Append(s Stage) error {
	if b.pastExtend && s.Kind != StageSave && (s.ShiftX != 0 || s.ShiftY != 0) {
		return xlerr.New(xlerr.PipelineShiftAfterExpand, "stage %q applies a shift after Extend", s.Name)
	}
	for _, ch := range s.Channels {
		if want, ok := b.channelType[ch]; ok && s.Kind != StageInspect {
			if want != s.InputType {
				return xlerr.New(xlerr.PipelineChannelTypeMismatch, "stage %q: channel %q is %v, stage expects %v", s.Name, ch, want, s.InputType)
			}
		}
		b.usedOnce[ch] = true
		if s.Kind != StageInspect {
			b.channelType[ch] = s.OutputType
		}
	}
	if s.Kind == StageExtend {
		b.pastExtend = true
	}
	b.stages = append(b.stages, s)
	return nil
}

// Build finalizes the pipeline, failing if any registered channel was
// never consumed by a stage.
func (b *Builder) Build(allChannels []string) (*Pipeline, error) {
	for _, ch := range allChannels {
		if !b.usedOnce[ch] {
			return nil, xlerr.New(xlerr.PipelineChannelUnused, "channel %q never consumed by any stage", ch)
		}
	}
	return &Pipeline{Stages: b.stages}, nil
}

// Run executes every stage in order against fb.
func (p *Pipeline) Run(fb *FrameBuffer) error {
	for _, s := range p.Stages {
		if err := s.Apply(fb); err != nil {
			return err
		}
	}
	return nil
}
