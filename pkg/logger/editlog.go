// Package logger implements a per-edit in-memory log buffer.
//
// Detail lines are buffered while an edit request is in flight.  When
// the edit succeeds the buffer is dropped and one short line is
// written; when it fails the buffer is replayed so the operator sees
// exactly which cell writes happened before the failure.
//
// Thread safety comes from a dedicated logger goroutine fed by a
// command channel; there are no mutexes.
package logger

import (
	"bytes"
	"fmt"
	"log"
	"strings"
	"time"
)

type action int

const (
	actBegin action = iota
	actAppend
	actSuccess
	actFlushErr
)

type cmd struct {
	act     action
	editID  string
	message string    // for Append
	summary string    // for Success
	err     error     // for FlushError
	when    time.Time
}

var ch = make(chan cmd, 128) // buffered for bursts of field writes

// Begin starts buffering for editID.
func Begin(editID string) { ch <- cmd{act: actBegin, editID: editID, when: time.Now()} }

// Append adds one detail line to the edit's buffer.  Without a prior
// Begin the line is written immediately.
func Append(editID, format string, v ...any) {
	ch <- cmd{act: actAppend, editID: editID, message: fmt.Sprintf(format, v...), when: time.Now()}
}

// Success drops the buffer and writes a single summary line.
func Success(editID, summary string) {
	ch <- cmd{act: actSuccess, editID: editID, summary: summary, when: time.Now()}
}

// FlushError replays the buffered lines and writes the final error.
func FlushError(editID string, err error) {
	ch <- cmd{act: actFlushErr, editID: editID, err: err, when: time.Now()}
}

// NewEditID hands out process-unique edit identifiers from a generator
// goroutine.
func NewEditID() string { return fmt.Sprintf("edit-%d", <-ids) }

var ids = startIDGenerator(1)

func startIDGenerator(initial int64) chan int64 {
	idChannel := make(chan int64)
	go func(start int64) {
		current := start
		for {
			idChannel <- current
			current++
		}
	}(initial)
	return idChannel
}

func init() { go runloop() }

func runloop() {
	buffers := make(map[string]*bytes.Buffer)

	for c := range ch {
		switch c.act {
		case actBegin:
			buffers[c.editID] = &bytes.Buffer{}

		case actAppend:
			if b := buffers[c.editID]; b != nil {
				_, _ = b.WriteString(fmt.Sprintf("[%s][Edit] %s\n", c.editID, c.message))
			} else {
				log.Printf("[%s][Edit] %s", c.editID, c.message)
			}

		case actSuccess:
			log.Printf("[%s][Edit] ✔ %s", c.editID, c.summary)
			delete(buffers, c.editID)

		case actFlushErr:
			if b := buffers[c.editID]; b != nil {
				lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
				for _, ln := range lines {
					if ln != "" {
						log.Print(ln)
					}
				}
				delete(buffers, c.editID)
			}
			log.Printf("[%s][ERROR] %v", c.editID, c.err)
		}
	}
}
