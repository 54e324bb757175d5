package link_test

import (
	"fmt"

	"github.com/cwbudde/algo-fdm/dsp/timebase"
	"github.com/cwbudde/algo-fdm/link"
	"github.com/cwbudde/algo-fdm/measure/recovery"
)

func ExampleLink_Run() {
	channels, err := link.Pair(
		[]float64{120, 240, 340, 500, 800},
		[]float64{3000, 6000, 9000, 12000, 15000},
	)
	if err != nil {
		fmt.Println(err)
		return
	}

	l := link.Link{
		Clock:    timebase.Clock{SampleRate: 50000, Duration: 0.01},
		Channels: channels,
		Filter:   link.FilterSpec{CutoffHz: 1000, Order: 4},
	}

	res, err := l.Run()
	if err != nil {
		fmt.Println(err)
		return
	}

	for i, ch := range l.Channels {
		q, err := recovery.Fit(res.Recovered[i], ch.MessageHz, l.Clock.SampleRate, 50)
		if err != nil {
			fmt.Println(err)
			return
		}

		fmt.Printf("%3.0f Hz: recovered amplitude %.2f\n", ch.MessageHz, q.Amplitude)
	}
	// Output:
	// 120 Hz: recovered amplitude 0.50
	// 240 Hz: recovered amplitude 0.50
	// 340 Hz: recovered amplitude 0.50
	// 500 Hz: recovered amplitude 0.50
	// 800 Hz: recovered amplitude 0.46
}
