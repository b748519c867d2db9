package database

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

const startKey = "metrics:start"

// Instrument records the latency of every gorm operation on hist, labelled
// by operation and table.
func Instrument(db *gorm.DB, hist *prometheus.HistogramVec) error {
	cb := db.Callback()
	hooks := []struct {
		op       string
		anchor   string
		register func(name string, before, after func(*gorm.DB)) error
	}{
		{"create", "gorm:create", func(name string, before, after func(*gorm.DB)) error {
			if err := cb.Create().Before("gorm:create").Register(name+"_before", before); err != nil {
				return err
			}
			return cb.Create().After("gorm:create").Register(name+"_after", after)
		}},
		{"query", "gorm:query", func(name string, before, after func(*gorm.DB)) error {
			if err := cb.Query().Before("gorm:query").Register(name+"_before", before); err != nil {
				return err
			}
			return cb.Query().After("gorm:query").Register(name+"_after", after)
		}},
		{"update", "gorm:update", func(name string, before, after func(*gorm.DB)) error {
			if err := cb.Update().Before("gorm:update").Register(name+"_before", before); err != nil {
				return err
			}
			return cb.Update().After("gorm:update").Register(name+"_after", after)
		}},
		{"delete", "gorm:delete", func(name string, before, after func(*gorm.DB)) error {
			if err := cb.Delete().Before("gorm:delete").Register(name+"_before", before); err != nil {
				return err
			}
			return cb.Delete().After("gorm:delete").Register(name+"_after", after)
		}},
		{"row", "gorm:row", func(name string, before, after func(*gorm.DB)) error {
			if err := cb.Row().Before("gorm:row").Register(name+"_before", before); err != nil {
				return err
			}
			return cb.Row().After("gorm:row").Register(name+"_after", after)
		}},
		{"raw", "gorm:raw", func(name string, before, after func(*gorm.DB)) error {
			if err := cb.Raw().Before("gorm:raw").Register(name+"_before", before); err != nil {
				return err
			}
			return cb.Raw().After("gorm:raw").Register(name+"_after", after)
		}},
	}

	for _, h := range hooks {
		if err := h.register("metrics:"+h.op, markStart, observe(hist, h.op)); err != nil {
			return fmt.Errorf("registering %s callbacks: %w", h.anchor, err)
		}
	}
	return nil
}

func markStart(db *gorm.DB) {
	db.InstanceSet(startKey, time.Now())
}

func observe(hist *prometheus.HistogramVec, op string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		v, ok := db.InstanceGet(startKey)
		if !ok {
			return
		}
		start, ok := v.(time.Time)
		if !ok {
			return
		}
		table := db.Statement.Table
		if table == "" {
			table = "unknown"
		}
		hist.WithLabelValues(op, table).Observe(time.Since(start).Seconds())
	}
}
