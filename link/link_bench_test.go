package link

import (
	"testing"

	"github.com/cwbudde/algo-fdm/dsp/timebase"
)

func benchLink(workers int) *Link {
	return &Link{
		Clock: timebase.Clock{SampleRate: 50000, Duration: 0.1},
		Channels: []Channel{
			{MessageHz: 120, CarrierHz: 3000},
			{MessageHz: 240, CarrierHz: 6000},
			{MessageHz: 340, CarrierHz: 9000},
			{MessageHz: 500, CarrierHz: 12000},
			{MessageHz: 800, CarrierHz: 15000},
		},
		Filter:  FilterSpec{CutoffHz: 1000, Order: 4},
		Workers: workers,
	}
}

func BenchmarkRun(b *testing.B) {
	l := benchLink(0)

	b.ReportAllocs()

	for b.Loop() {
		if _, err := l.Run(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRunParallel(b *testing.B) {
	l := benchLink(4)

	b.ReportAllocs()

	for b.Loop() {
		if _, err := l.Run(); err != nil {
			b.Fatal(err)
		}
	}
}
