package canvas

// Raw shapes as the Canvas REST API returns them. Only the fields the
// reconciler reads are declared; everything else is ignored on decode.

type Module struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Position  int    `json:"position"`
	UnlockAt  string `json:"unlock_at"`
	LockAt    string `json:"lock_at"`
	Published bool   `json:"published"`
}

type ModuleItem struct {
	ID        int    `json:"id"`
	ModuleID  int    `json:"module_id"`
	Title     string `json:"title"`
	Type      string `json:"type"`
	ContentID int    `json:"content_id"`
	Position  int    `json:"position"`
}

type Assignment struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	UnlockAt string `json:"unlock_at"`
	DueAt    string `json:"due_at"`
	LockAt   string `json:"lock_at"`
}

type DiscussionTopic struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	DelayedPostAt string `json:"delayed_post_at"`
	LockAt        string `json:"lock_at"`

	// AssignmentID is set for graded discussions and binds the topic to
	// its backing assignment.
	AssignmentID int `json:"assignment_id"`
}

type Page struct {
	PageID int    `json:"page_id"`
	URL    string `json:"url"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

type Rubric struct {
	ID             int     `json:"id"`
	Title          string  `json:"title"`
	PointsPossible float64 `json:"points_possible"`
}

type OutcomeGroup struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// OutcomeLink is how group membership endpoints wrap outcomes; some
// backends return the outcome inline instead.
type OutcomeLink struct {
	Outcome *Outcome `json:"outcome"`

	// Inline fallback fields, used when no nested outcome is present.
	ID    int    `json:"id"`
	Title string `json:"title"`
}

type Outcome struct {
	ID          int             `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	DisplayName string          `json:"display_name"`
	Ratings     []OutcomeRating `json:"ratings"`
}

type OutcomeRating struct {
	Description string  `json:"description"`
	Points      float64 `json:"points"`
}

type createdItem struct {
	ID       int `json:"id"`
	Position int `json:"position"`
}

type createdRubric struct {
	Rubric *Rubric `json:"rubric"`
	ID     int     `json:"id"`
	Title  string  `json:"title"`
}
