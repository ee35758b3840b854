package render

import "testing"

func TestMirrorReflectsOutOfBounds(t *testing.T) {
	cases := []struct{ v, n, want int }{
		{-1, 4, 0},
		{-2, 4, 1},
		{4, 4, 3},
		{5, 4, 2},
		{2, 4, 2},
	}
	for _, c := range cases {
		if got := mirror(c.v, c.n); got != c.want {
			t.Fatalf("mirror(%d,%d) = %d, want %d", c.v, c.n, got, c.want)
		}
	}
}

func TestUpsampleDoublesDimensions(t *testing.T) {
	src := NewPlane(2, 2)
	src.Data = []float32{0, 1, 2, 3}
	out := Upsample(src, 1)
	if out.Width != 4 || out.Height != 4 {
		t.Fatalf("got %dx%d, want 4x4", out.Width, out.Height)
	}
	if out.At(0, 0) != 0 {
		t.Fatalf("corner sample should match source corner, got %v", out.At(0, 0))
	}
}

func TestUpsampleZeroShiftCopies(t *testing.T) {
	src := NewPlane(2, 2)
	src.Data = []float32{1, 2, 3, 4}
	out := Upsample(src, 0)
	for i := range src.Data {
		if out.Data[i] != src.Data[i] {
			t.Fatalf("index %d: got %v want %v", i, out.Data[i], src.Data[i])
		}
	}
}

func TestGaborishFlatPlaneIsUnchanged(t *testing.T) {
	p := NewPlane(4, 4)
	for i := range p.Data {
		p.Data[i] = 5
	}
	out := Gaborish(p, 0.1, 0.05)
	for i := range out.Data {
		if out.Data[i] != 5 {
			t.Fatalf("flat plane should be unchanged by normalized convolution, got %v at %d", out.Data[i], i)
		}
	}
}

func TestEPFFlatPlaneIsUnchanged(t *testing.T) {
	p := NewPlane(4, 4)
	for i := range p.Data {
		p.Data[i] = 7
	}
	out := EPFIteration(p, 1.0)
	for i := range out.Data {
		if out.Data[i] != 7 {
			t.Fatalf("flat plane should be unchanged by EPF, got %v at %d", out.Data[i], i)
		}
	}
}

func TestBlendModes(t *testing.T) {
	if got := BlendPixel(BlendReplace, 0.2, 0.8, 1); got != 0.8 {
		t.Fatalf("replace: got %v", got)
	}
	if got := BlendPixel(BlendAdd, 0.2, 0.3, 1); got != 0.5 {
		t.Fatalf("add: got %v", got)
	}
	if got := BlendPixel(BlendMul, 0.5, 0.5, 1); got != 0.25 {
		t.Fatalf("mul: got %v", got)
	}
}

func TestBuilderRejectsUnusedChannel(t *testing.T) {
	b := NewBuilder(map[string]ChannelType{"X": TypeF32, "Y": TypeF32})
	_ = b.Append(Stage{
		Kind: StageInPlace, Name: "touch-x", Channels: []string{"X"},
		InputType: TypeF32, OutputType: TypeF32,
		Apply: func(fb *FrameBuffer) error { return nil },
	})
	if _, err := b.Build([]string{"X", "Y"}); err == nil {
		t.Fatal("expected PipelineChannelUnused error for untouched Y channel")
	}
}

func TestBuilderRejectsShiftAfterExtend(t *testing.T) {
	b := NewBuilder(map[string]ChannelType{"X": TypeF32})
	_ = b.Append(Stage{
		Kind: StageExtend, Name: "extend", Channels: []string{"X"},
		InputType: TypeF32, OutputType: TypeF32,
		Apply: func(fb *FrameBuffer) error { return nil },
	})
	err := b.Append(Stage{
		Kind: StageInOut, Name: "shift-after-extend", Channels: []string{"X"},
		InputType: TypeF32, OutputType: TypeF32,
		ShiftX: 1,
		Apply:  func(fb *FrameBuffer) error { return nil },
	})
	if err == nil {
		t.Fatal("expected PipelineShiftAfterExpand error")
	}
}

func TestBuilderRejectsTypeMismatch(t *testing.T) {
	b := NewBuilder(map[string]ChannelType{"X": TypeF32})
	err := b.Append(Stage{
		Kind: StageInPlace, Name: "wrong-type", Channels: []string{"X"},
		InputType: TypeU8, OutputType: TypeF32,
		Apply: func(fb *FrameBuffer) error { return nil },
	})
	if err == nil {
		t.Fatal("expected PipelineChannelTypeMismatch error")
	}
}
