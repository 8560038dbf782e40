package orders

// Status is the persisted order status. Status changes are made by the
// lab side; this layer only reads them back and renders the progression.
type Status string

const (
	StatusPending     Status = "pending"
	StatusInProgress  Status = "in_progress"
	StatusUnderReview Status = "under_review"
	StatusCompleted   Status = "completed"
	StatusCancelled   Status = "cancelled"
)

// TotalStages is the length of the non-terminal progression.
const TotalStages = 4

// statusRanks orders the non-terminal statuses. Cancelled is terminal
// and stays outside the ordering entirely.
var statusRanks = map[Status]int{
	StatusPending:     1,
	StatusInProgress:  2,
	StatusUnderReview: 3,
	StatusCompleted:   4,
}

// Stages lists the progression in rank order.
var Stages = []Status{StatusPending, StatusInProgress, StatusUnderReview, StatusCompleted}

// Rank returns the 1-based position of a status in the progression, or
// 0 for cancelled and unknown statuses.
func Rank(s Status) int {
	return statusRanks[s]
}

// Valid reports whether s is one of the five persisted statuses.
func Valid(s Status) bool {
	return s == StatusCancelled || statusRanks[s] != 0
}

// Progress returns the fill fraction of the progress indicator,
// rank/TotalStages clamped to [0,1]. Cancelled orders render a banner
// instead of a bar, so their fraction is 0.
func Progress(s Status) float64 {
	r := Rank(s)
	if r <= 0 {
		return 0
	}
	if r > TotalStages {
		r = TotalStages
	}
	return float64(r) / float64(TotalStages)
}

// StageView is the render state of one stage of the progression.
type StageView struct {
	Status  Status
	Rank    int
	Active  bool
	Current bool
}

// Lifecycle is the full render state for an order's status.
type Lifecycle struct {
	Cancelled bool
	Rank      int
	Progress  float64
	Stages    []StageView
}

// BuildLifecycle maps a stored status to its render state. A stage is
// active iff its rank <= the order's rank, current iff equal. For
// cancelled orders the stage list is empty and Cancelled is set.
func BuildLifecycle(s Status) Lifecycle {
	if s == StatusCancelled {
		return Lifecycle{Cancelled: true}
	}

	rank := Rank(s)
	lc := Lifecycle{
		Rank:     rank,
		Progress: Progress(s),
		Stages:   make([]StageView, 0, TotalStages),
	}
	for i, stage := range Stages {
		stageRank := i + 1
		lc.Stages = append(lc.Stages, StageView{
			Status:  stage,
			Rank:    stageRank,
			Active:  stageRank <= rank,
			Current: stageRank == rank,
		})
	}
	return lc
}
