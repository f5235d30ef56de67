// Package sampleimage accumulates radiance samples per pixel, and stores them
// in a resumable file format.
//
// The file is an 8-byte little-endian header length, a protobuf-encoded
// header, and then a zlib stream holding the sample sums and counts.
package sampleimage

import (
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	Channels = 3

	dataLayoutVersion = 1

	// Limits on what ReadSampleImage will allocate for a file.
	maxHeaderLength = 1 << 20
	maxPixels       = 1 << 26
)

type SampleImage struct {
	RowSize, ColSize int

	// RadianceSums holds Channels entries per pixel, row-major.
	RadianceSums []float32

	// SampleCounts holds one entry per pixel.
	SampleCounts []float32
}

type Sample struct {
	RadianceSum [Channels]float32
	SampleCount float32
}

func (s *SampleImage) Resize(rowSize, colSize int) {
	s.RowSize = rowSize
	s.ColSize = colSize

	s.RadianceSums = make([]float32, rowSize*colSize*Channels)
	s.SampleCounts = make([]float32, rowSize*colSize)
}

func (s *SampleImage) RecordSample(r, c int, radiance [Channels]float64) {
	idx := r*s.ColSize + c
	for ch := 0; ch < Channels; ch++ {
		s.RadianceSums[idx*Channels+ch] += float32(radiance[ch])
	}
	s.SampleCounts[idx] += 1
}

func (s *SampleImage) ReadSample(r, c int) Sample {
	idx := r*s.ColSize + c
	samp := Sample{SampleCount: s.SampleCounts[idx]}
	copy(samp.RadianceSum[:], s.RadianceSums[idx*Channels:(idx+1)*Channels])
	return samp
}

// TotalSamples is the number of samples recorded across all pixels.
func (s *SampleImage) TotalSamples() int {
	total := 0
	for _, n := range s.SampleCounts {
		total += int(n)
	}
	return total
}

// Cut copies out the rectangle [rowSrc, rowLim) x [colSrc, colLim).
func (s *SampleImage) Cut(rowSrc, rowLim, colSrc, colLim int) *SampleImage {
	dst := &SampleImage{}
	dst.Resize(rowLim-rowSrc, colLim-colSrc)

	for r := rowSrc; r < rowLim; r++ {
		srcIdx := r*s.ColSize + colSrc
		dstIdx := (r - rowSrc) * dst.ColSize

		copy(dst.SampleCounts[dstIdx:dstIdx+dst.ColSize], s.SampleCounts[srcIdx:srcIdx+dst.ColSize])
		copy(dst.RadianceSums[dstIdx*Channels:(dstIdx+dst.ColSize)*Channels], s.RadianceSums[srcIdx*Channels:(srcIdx+dst.ColSize)*Channels])
	}

	return dst
}

// Paste overwrites the rectangle of s starting at (rowSrc, colSrc) with src.
func (s *SampleImage) Paste(src *SampleImage, rowSrc, colSrc int) {
	for r := 0; r < src.RowSize; r++ {
		srcIdx := r * src.ColSize
		dstIdx := (r+rowSrc)*s.ColSize + colSrc

		copy(s.SampleCounts[dstIdx:dstIdx+src.ColSize], src.SampleCounts[srcIdx:srcIdx+src.ColSize])
		copy(s.RadianceSums[dstIdx*Channels:(dstIdx+src.ColSize)*Channels], src.RadianceSums[srcIdx*Channels:(srcIdx+src.ColSize)*Channels])
	}
}

// ToRGBA averages the samples of each pixel and gamma-corrects them for
// display.  Pixels with no samples are black.
func (s *SampleImage) ToRGBA() *image.RGBA {
	im := image.NewRGBA(image.Rect(0, 0, s.ColSize, s.RowSize))
	for r := 0; r < s.RowSize; r++ {
		for c := 0; c < s.ColSize; c++ {
			samp := s.ReadSample(r, c)
			px := color.RGBA{A: 255}
			if samp.SampleCount > 0 {
				px.R = toByte(samp.RadianceSum[0] / samp.SampleCount)
				px.G = toByte(samp.RadianceSum[1] / samp.SampleCount)
				px.B = toByte(samp.RadianceSum[2] / samp.SampleCount)
			}
			im.SetRGBA(c, r, px)
		}
	}
	return im
}

// toByte applies gamma 2 and quantizes to [0, 255].
func toByte(linear float32) uint8 {
	if !(linear > 0) {
		return 0
	}
	v := math.Sqrt(float64(linear))
	return uint8(256 * math.Min(v, 0.999))
}

func WritePNG(im *SampleImage, w io.Writer) error {
	if err := png.Encode(w, im.ToRGBA()); err != nil {
		return fmt.Errorf("while encoding png: %w", err)
	}
	return nil
}

func ReadSampleImage(in io.Reader) (*SampleImage, error) {
	var headerLength uint64
	if err := binary.Read(in, binary.LittleEndian, &headerLength); err != nil {
		return nil, fmt.Errorf("while reading header length: %w", err)
	}

	if headerLength > maxHeaderLength {
		return nil, fmt.Errorf("header length %d exceeds limit %d", headerLength, maxHeaderLength)
	}

	headerBytes := make([]byte, int(headerLength))
	if _, err := io.ReadFull(in, headerBytes); err != nil {
		return nil, fmt.Errorf("while reading header bytes: %w", err)
	}

	hdr := &structpb.Struct{}
	if err := proto.Unmarshal(headerBytes, hdr); err != nil {
		return nil, fmt.Errorf("while unmarshaling header: %w", err)
	}

	fields := hdr.GetFields()
	if v := fields["data_layout_version"].GetNumberValue(); v != dataLayoutVersion {
		return nil, fmt.Errorf("bad data layout version: %v", v)
	}
	if ch := fields["channel_size"].GetNumberValue(); ch != Channels {
		return nil, fmt.Errorf("bad channel count: %v", ch)
	}

	rowSize := fields["row_size"].GetNumberValue()
	colSize := fields["col_size"].GetNumberValue()
	if !validSize(rowSize) || !validSize(colSize) || rowSize*colSize > maxPixels {
		return nil, fmt.Errorf("bad image size %vx%v", rowSize, colSize)
	}

	im := &SampleImage{}
	im.Resize(int(rowSize), int(colSize))

	zipReader, err := zlib.NewReader(in)
	if err != nil {
		return nil, fmt.Errorf("while opening zip reader: %w", err)
	}
	defer zipReader.Close()

	if err := binary.Read(zipReader, binary.LittleEndian, im.RadianceSums); err != nil {
		return nil, fmt.Errorf("while reading radiance sums: %w", err)
	}

	if err := binary.Read(zipReader, binary.LittleEndian, im.SampleCounts); err != nil {
		return nil, fmt.Errorf("while reading sample counts: %w", err)
	}

	return im, nil
}

// validSize reports whether a header dimension is a whole number no larger than
// maxPixels.  NaN fails every comparison.
func validSize(v float64) bool {
	return v >= 0 && v <= maxPixels && v == math.Trunc(v)
}

func ReadSampleImageFromFile(name string) (*SampleImage, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("while opening file: %w", err)
	}
	defer f.Close()

	return ReadSampleImage(f)
}

func WriteSampleImage(im *SampleImage, w io.Writer) error {
	hdr, err := structpb.NewStruct(map[string]interface{}{
		"row_size":            im.RowSize,
		"col_size":            im.ColSize,
		"channel_size":        Channels,
		"data_layout_version": dataLayoutVersion,
	})
	if err != nil {
		return fmt.Errorf("while building header: %w", err)
	}

	hdrBytes, err := proto.Marshal(hdr)
	if err != nil {
		return fmt.Errorf("while marshaling header: %w", err)
	}

	headerLengthBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(headerLengthBytes, uint64(len(hdrBytes)))
	if _, err := w.Write(headerLengthBytes); err != nil {
		return fmt.Errorf("while writing header length: %w", err)
	}

	if _, err := w.Write(hdrBytes); err != nil {
		return fmt.Errorf("while writing header: %w", err)
	}

	zipWriter := zlib.NewWriter(w)

	if err := binary.Write(zipWriter, binary.LittleEndian, im.RadianceSums); err != nil {
		return fmt.Errorf("while writing radiance sums: %w", err)
	}

	if err := binary.Write(zipWriter, binary.LittleEndian, im.SampleCounts); err != nil {
		return fmt.Errorf("while writing sample counts: %w", err)
	}

	if err := zipWriter.Close(); err != nil {
		return fmt.Errorf("while closing zip writer: %w", err)
	}

	return nil
}
