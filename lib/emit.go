package lib

import (
	"fmt"
	"io"
	"time"

	"github.com/5amCurfew/singo/models"
)

// Emitter writes protocol messages one per line to the data channel and
// frames metrics onto the side channel as "INFO METRIC: <json>" lines.
// Conventionally the data channel is stdout and the side channel stderr.
type Emitter struct {
	Out  io.Writer
	Side io.Writer
}

func NewEmitter(out, side io.Writer) *Emitter {
	return &Emitter{Out: out, Side: side}
}

// WriteMessage emits a message as exactly one newline-terminated line.
func (e *Emitter) WriteMessage(m models.Message) error {
	line, err := models.EncodeMessage(m)
	if err != nil {
		return fmt.Errorf("error emitting message: %w", err)
	}
	if _, err := e.Out.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("error writing message: %w", err)
	}
	return nil
}

// WriteMetric emits a metric onto the side channel.
func (e *Emitter) WriteMetric(m models.Metric) error {
	data, err := models.EncodeMetric(m)
	if err != nil {
		return fmt.Errorf("error emitting metric: %w", err)
	}
	if _, err := fmt.Fprintf(e.Side, "INFO METRIC: %s\n", data); err != nil {
		return fmt.Errorf("error writing metric: %w", err)
	}
	return nil
}

// Counter accumulates a count and flushes it as a counter metric.
type Counter struct {
	emitter *Emitter
	metric  string
	tags    map[string]interface{}
	count   int64
}

func (e *Emitter) NewCounter(metric string, tags map[string]interface{}) *Counter {
	return &Counter{emitter: e, metric: metric, tags: tags}
}

func (c *Counter) Increment(n int64) {
	c.count += n
}

// Flush emits the accumulated count and resets it to zero.
func (c *Counter) Flush() error {
	err := c.emitter.WriteMetric(models.Metric{
		Type:   models.MetricTypeCounter,
		Metric: c.metric,
		Value:  models.IntegerValue(c.count),
		Tags:   c.tags,
	})
	c.count = 0
	return err
}

// Time runs fn and emits its wall-clock duration in seconds as a timer
// metric. An error from fn takes precedence over a metric write failure.
func (e *Emitter) Time(metric string, tags map[string]interface{}, fn func() error) error {
	start := time.Now()
	fnErr := fn()

	metricErr := e.WriteMetric(models.Metric{
		Type:   models.MetricTypeTimer,
		Metric: metric,
		Value:  models.FloatValue(time.Since(start).Seconds()),
		Tags:   tags,
	})

	if fnErr != nil {
		return fnErr
	}
	return metricErr
}
