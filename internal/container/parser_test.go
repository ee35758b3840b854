package container

import (
	"bytes"
	"testing"

	"github.com/jxl-go/jxl/internal/xlerr"
)

func box(kind uint32, content []byte) []byte {
	var b bytes.Buffer
	length := uint32(BoxHeaderSize + len(content))
	b.Write([]byte{byte(length >> 24), byte(length >> 16), byte(length >> 8), byte(length)})
	b.Write([]byte{byte(kind >> 24), byte(kind >> 16), byte(kind >> 8), byte(kind)})
	b.Write(content)
	return b.Bytes()
}

func TestBareCodestream(t *testing.T) {
	data := append([]byte{0xFF, 0x0A}, []byte("rest")...)
	res, err := Parse(data, DefaultMetadataCaptureOptions())
	if err != nil {
		t.Fatal(err)
	}
	if res.Signature != SignatureCodestream {
		t.Fatalf("expected bare codestream signature")
	}
	if !bytes.Equal(res.Codestream, data) {
		t.Fatalf("codestream bytes mismatch")
	}
}

func TestContainerSingleJxlc(t *testing.T) {
	cs := []byte{0xFF, 0x0A, 1, 2, 3, 4}
	var data []byte
	data = append(data, ContainerSignature[:]...)
	data = append(data, box(KindJxlc, cs)...)

	res, err := Parse(data, DefaultMetadataCaptureOptions())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(res.Codestream, cs) {
		t.Fatalf("got %v want %v", res.Codestream, cs)
	}
}

// A container wrapping a known bare codestream produces the same
// decode (here: the same reassembled codestream bytes) as the bare
// codestream.
func TestContainerEquivalentToBareCodestream(t *testing.T) {
	cs := []byte{0xFF, 0x0A, 9, 9, 9}
	bare, err := Parse(cs, DefaultMetadataCaptureOptions())
	if err != nil {
		t.Fatal(err)
	}

	var wrapped []byte
	wrapped = append(wrapped, ContainerSignature[:]...)
	wrapped = append(wrapped, box(KindJxlc, cs)...)
	wrappedRes, err := Parse(wrapped, DefaultMetadataCaptureOptions())
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(bare.Codestream, wrappedRes.Codestream) {
		t.Fatalf("bare %v != wrapped %v", bare.Codestream, wrappedRes.Codestream)
	}
}

func TestJxlpReassembly(t *testing.T) {
	part0 := box(KindJxlp, append([]byte{0, 0, 0, 0}, []byte("AA")...))
	part1 := box(KindJxlp, append([]byte{0x80, 0, 0, 1}, []byte("BB")...))

	var data []byte
	data = append(data, ContainerSignature[:]...)
	data = append(data, part0...)
	data = append(data, part1...)

	res, err := Parse(data, DefaultMetadataCaptureOptions())
	if err != nil {
		t.Fatal(err)
	}
	if string(res.Codestream) != "AABB" {
		t.Fatalf("got %q", res.Codestream)
	}
}

func TestJxlpOutOfOrderRejected(t *testing.T) {
	part1 := box(KindJxlp, append([]byte{0x80, 0, 0, 1}, []byte("BB")...))
	var data []byte
	data = append(data, ContainerSignature[:]...)
	data = append(data, part1...)

	_, err := Parse(data, DefaultMetadataCaptureOptions())
	if err == nil {
		t.Fatal("expected error for out-of-order jxlp")
	}
}

func TestMixingJxlcAndJxlpRejected(t *testing.T) {
	cs := []byte{0xFF, 0x0A}
	part0 := box(KindJxlp, append([]byte{0, 0, 0, 0}, cs...))
	jxlc := box(KindJxlc, cs)

	var data []byte
	data = append(data, ContainerSignature[:]...)
	data = append(data, part0...)
	data = append(data, jxlc...)

	_, err := Parse(data, DefaultMetadataCaptureOptions())
	if err == nil {
		t.Fatal("expected error mixing jxlc with jxlp")
	}
}

// Captured Exif/xml/jumb contents equal the emitted bytes; brob boxes
// capture is_brotli_compressed and the inner-kind prefix.
func TestMetadataCapture(t *testing.T) {
	cs := []byte{0xFF, 0x0A}
	exifPayload := []byte("exifdata")
	xmlPayload := []byte("<xml/>")
	brobInner := KindExif
	brobPayload := append([]byte{byte(brobInner >> 24), byte(brobInner >> 16), byte(brobInner >> 8), byte(brobInner)}, []byte("compressed")...)

	var data []byte
	data = append(data, ContainerSignature[:]...)
	data = append(data, box(KindExif, exifPayload)...)
	data = append(data, box(KindXML, xmlPayload)...)
	data = append(data, box(KindBrob, brobPayload)...)
	data = append(data, box(KindJxlc, cs)...)

	res, err := Parse(data, DefaultMetadataCaptureOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Metadata) != 3 {
		t.Fatalf("expected 3 metadata chunks, got %d", len(res.Metadata))
	}
	if !bytes.Equal(res.Metadata[0].Payload, exifPayload) {
		t.Fatalf("exif payload mismatch")
	}
	if !bytes.Equal(res.Metadata[1].Payload, xmlPayload) {
		t.Fatalf("xml payload mismatch")
	}
	brob := res.Metadata[2]
	if !brob.IsBrotliCompressed || brob.InnerKind != brobInner {
		t.Fatalf("brob metadata flags wrong: %+v", brob)
	}
	if !bytes.Equal(brob.Payload, []byte("compressed")) {
		t.Fatalf("brob payload mismatch")
	}
}

func TestTruncatedContainerNeedsMoreInput(t *testing.T) {
	var data []byte
	data = append(data, ContainerSignature[:]...)
	data = append(data, box(KindJxlc, []byte{0xFF, 0x0A, 1, 2, 3, 4})[:4]...) // truncate mid-header

	_, err := Parse(data, DefaultMetadataCaptureOptions())
	if !xlerr.Is(err, xlerr.OutOfBounds) {
		t.Fatalf("expected OutOfBounds, got %v", err)
	}
}
