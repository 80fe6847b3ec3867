package model

// Conversation states for both bots. Each state is its own struct carrying
// only the fields that are meaningful while that state is active, so a
// handler cannot read fields that belong to a different step. The marker
// methods seal the two sets: a type switch over AdminState or SurveyState
// covers every possible state.

// QuestionEditMode distinguishes what the next free-text message means while
// the admin bot is waiting for question text.
type QuestionEditMode int

const (
	EditModeAdd QuestionEditMode = iota
	EditModeReplace
)

// NoPendingDelete marks an EditingQuestions state with no delete
// confirmation in flight.
const NoPendingDelete = -1

// AdminState is the per-chat state of the admin conversation. The absence of
// a session means the chat is unauthenticated.
type AdminState interface{ adminState() }

// Authenticating waits for the shared admin password. Unlimited retries.
type Authenticating struct{}

// Menu is the top-level admin panel.
type Menu struct{}

// EditingQuestions is the question-management menu. PendingDelete holds the
// index selected for deletion while the confirm/cancel prompt is shown, or
// NoPendingDelete.
type EditingQuestions struct {
	PendingDelete int
}

// AwaitingQuestionText consumes the next free-text message as question text:
// appended when Mode is EditModeAdd, written over Index when EditModeReplace.
type AwaitingQuestionText struct {
	Mode  QuestionEditMode
	Index int
}

func (Authenticating) adminState()       {}
func (Menu) adminState()                 {}
func (EditingQuestions) adminState()     {}
func (AwaitingQuestionText) adminState() {}

// SurveyState is the per-chat state of the survey conversation.
type SurveyState interface{ surveyState() }

// CollectingName waits for the respondent's full name.
type CollectingName struct{}

// CollectingPhone waits for the phone number.
type CollectingPhone struct {
	Name string
}

// CollectingRating walks the question snapshot taken at form start. The next
// question to ask is Questions[len(Ratings)].
type CollectingRating struct {
	Name      string
	Phone     string
	Questions []string
	Ratings   []int
}

func (CollectingName) surveyState()   {}
func (CollectingPhone) surveyState()  {}
func (CollectingRating) surveyState() {}
