// Package saving decides when an editor session exports its design and when it
// persists it. A pure reducer owns the process state; the Orchestrator runs the
// side effects each state asks for and feeds their outcome back as events.
package saving

import (
	"fmt"

	"github.com/debemdeboas/campaign-editor/internal/model"
)

// Step names the phase of a save cycle.
type Step string

const (
	StepIdle             Step = "idle"
	StepPreparingContent Step = "preparing-content"
	StepPostingContent   Step = "posting-content"
)

// ProcessState is one of Idle, PreparingContent or PostingContent.
type ProcessState interface {
	Step() Step
	isProcessState()
}

type Idle struct{}

type PreparingContent struct {
	Generation uint64
}

type PostingContent struct {
	Generation uint64
	Content    model.Content
}

func (Idle) Step() Step             { return StepIdle }
func (PreparingContent) Step() Step { return StepPreparingContent }
func (PostingContent) Step() Step   { return StepPostingContent }

func (Idle) isProcessState()             {}
func (PreparingContent) isProcessState() {}
func (PostingContent) isProcessState()   {}

// Machine is the complete reducer state: the active process state plus the highest
// generation issued so far.
type Machine struct {
	Process    ProcessState
	Generation uint64
}

func NewMachine() Machine {
	return Machine{Process: Idle{}}
}

// Active reports the generation of the cycle in flight, if any.
func (m Machine) Active() (uint64, bool) {
	switch p := m.Process.(type) {
	case PreparingContent:
		return p.Generation, true
	case PostingContent:
		return p.Generation, true
	default:
		return 0, false
	}
}

func (m Machine) String() string {
	if g, ok := m.Active(); ok {
		return fmt.Sprintf("%s#%d", m.Process.Step(), g)
	}
	return string(StepIdle)
}

// Event is one of SaveRequested, ContentPrepared, PreparingFailed, ContentPersisted
// or PersistingFailed.
type Event interface {
	Name() string
	isEvent()
}

// Completion is implemented by the events that report the outcome of an effect.
type Completion interface {
	Event
	CycleGeneration() uint64
}

type SaveRequested struct {
	Force bool
}

// ContentPrepared with a nil Content means there was nothing to export.
type ContentPrepared struct {
	Content    model.Content
	Generation uint64
}

type PreparingFailed struct {
	Generation uint64
	Err        error
}

type ContentPersisted struct {
	Generation uint64
}

type PersistingFailed struct {
	Generation uint64
	Err        error
}

func (SaveRequested) Name() string    { return "save-requested" }
func (ContentPrepared) Name() string  { return "content-prepared-to-save" }
func (PreparingFailed) Name() string  { return "save-error-happened" }
func (ContentPersisted) Name() string { return "content-saved" }
func (PersistingFailed) Name() string { return "save-error-happened" }

func (SaveRequested) isEvent()    {}
func (ContentPrepared) isEvent()  {}
func (PreparingFailed) isEvent()  {}
func (ContentPersisted) isEvent() {}
func (PersistingFailed) isEvent() {}

func (e ContentPrepared) CycleGeneration() uint64  { return e.Generation }
func (e PreparingFailed) CycleGeneration() uint64  { return e.Generation }
func (e ContentPersisted) CycleGeneration() uint64 { return e.Generation }
func (e PersistingFailed) CycleGeneration() uint64 { return e.Generation }

// Failure is implemented by the two error events.
type Failure interface {
	Completion
	FailedStep() Step
	Cause() error
}

func (e PreparingFailed) FailedStep() Step  { return StepPreparingContent }
func (e PersistingFailed) FailedStep() Step { return StepPostingContent }
func (e PreparingFailed) Cause() error      { return e.Err }
func (e PersistingFailed) Cause() error     { return e.Err }
