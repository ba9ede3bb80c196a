package canvas

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"canvas-reconcile/internal/httpx"
	"canvas-reconcile/internal/reconcile"
)

// Client talks to the Canvas REST API for one course, authenticated with a
// bearer token supplied once per run.
type Client struct {
	BaseURL  string
	Token    string
	CourseID int
	PageSize int
	HTTP     *http.Client
}

func New(baseURL, token string, courseID, pageSize int) *Client {
	if pageSize <= 0 {
		pageSize = 100
	}
	tr := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &Client{
		BaseURL:  baseURL,
		Token:    token,
		CourseID: courseID,
		PageSize: pageSize,
		HTTP: &http.Client{
			Timeout:   2 * time.Minute,
			Transport: tr,
		},
	}
}

// courseURL builds a course-scoped API URL from a bare domain or a full
// base path, tolerating both the way operator configs are written.
func (c *Client) courseURL(resource string) string {
	base := strings.TrimRight(c.BaseURL, "/")
	if !strings.HasPrefix(base, "http") {
		base = "https://" + base
	}
	if !strings.Contains(base, "/api/v1/courses") {
		base = base + "/api/v1/courses"
	}
	return fmt.Sprintf("%s/%d/%s", base, c.CourseID, strings.TrimLeft(resource, "/"))
}

func (c *Client) firstPageURL(resource string) string {
	u := c.courseURL(resource)
	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%sper_page=%d", u, sep, c.PageSize)
}

// listAll follows the Link rel="next" cursor until exhausted. Any non-2xx
// page fails the whole read; a mix of complete and incomplete pages would
// silently corrupt later matching.
func listAll[T any](ctx context.Context, c *Client, firstURL string) ([]T, error) {
	var all []T
	next := firstURL
	for next != "" {
		pageURL := next
		var page []T
		header, err := httpx.DoJSON(
			ctx,
			c.HTTP,
			func(ctx context.Context) (*http.Request, error) {
				req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
				if err != nil {
					return nil, err
				}
				req.Header.Set("Accept", "application/json")
				req.Header.Set("Authorization", "Bearer "+c.Token)
				return req, nil
			},
			&page,
			httpx.DefaultRetryConfig(),
		)
		if err != nil {
			return nil, fmt.Errorf("canvas: list %s failed: %w", pageURL, err)
		}
		all = append(all, page...)
		next = httpx.NextLink(header)
	}
	return all, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	_, err := httpx.DoJSON(
		ctx,
		c.HTTP,
		func(ctx context.Context) (*http.Request, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
			if err != nil {
				return nil, err
			}
			req.Header.Set("Accept", "application/json")
			req.Header.Set("Authorization", "Bearer "+c.Token)
			return req, nil
		},
		out,
		httpx.DefaultRetryConfig(),
	)
	return err
}

func (c *Client) sendForm(ctx context.Context, method, rawURL string, form url.Values, out any) error {
	_, err := httpx.DoJSON(
		ctx,
		c.HTTP,
		func(ctx context.Context) (*http.Request, error) {
			return httpx.FormRequest(ctx, method, rawURL, c.Token, form)
		},
		out,
		httpx.DefaultRetryConfig(),
	)
	return err
}

/* -------- Reads -------- */

func (c *Client) ListModules(ctx context.Context) ([]Module, error) {
	return listAll[Module](ctx, c, c.firstPageURL("modules"))
}

func (c *Client) ListModuleItems(ctx context.Context, moduleID int) ([]ModuleItem, error) {
	return listAll[ModuleItem](ctx, c, c.firstPageURL(fmt.Sprintf("modules/%d/items", moduleID)))
}

func (c *Client) ListAssignments(ctx context.Context) ([]Assignment, error) {
	return listAll[Assignment](ctx, c, c.firstPageURL("assignments"))
}

func (c *Client) ListDiscussionTopics(ctx context.Context) ([]DiscussionTopic, error) {
	return listAll[DiscussionTopic](ctx, c, c.firstPageURL("discussion_topics"))
}

func (c *Client) ListPages(ctx context.Context) ([]Page, error) {
	return listAll[Page](ctx, c, c.firstPageURL("pages"))
}

func (c *Client) ListRubrics(ctx context.Context) ([]Rubric, error) {
	return listAll[Rubric](ctx, c, c.firstPageURL("rubrics"))
}

func (c *Client) ListOutcomeGroups(ctx context.Context) ([]OutcomeGroup, error) {
	return listAll[OutcomeGroup](ctx, c, c.firstPageURL("outcome_groups"))
}

func (c *Client) ListGroupOutcomes(ctx context.Context, groupID int) ([]OutcomeLink, error) {
	return listAll[OutcomeLink](ctx, c, c.firstPageURL(fmt.Sprintf("outcome_groups/%d/outcomes?outcome_style=full", groupID)))
}

// GetPage fetches one page including its body; list responses omit bodies.
func (c *Client) GetPage(ctx context.Context, slug string) (Page, error) {
	var p Page
	if err := c.getJSON(ctx, c.courseURL("pages/"+url.PathEscape(slug)), &p); err != nil {
		return Page{}, fmt.Errorf("canvas: get page %q failed: %w", slug, err)
	}
	return p, nil
}

/* -------- Mutations -------- */

func (c *Client) UpdateModule(ctx context.Context, moduleID int, form url.Values) error {
	if err := c.sendForm(ctx, http.MethodPut, c.courseURL(fmt.Sprintf("modules/%d", moduleID)), form, nil); err != nil {
		return fmt.Errorf("canvas: update module %d failed: %w", moduleID, err)
	}
	return nil
}

func (c *Client) UpdateAssignment(ctx context.Context, assignmentID int, form url.Values) error {
	if err := c.sendForm(ctx, http.MethodPut, c.courseURL(fmt.Sprintf("assignments/%d", assignmentID)), form, nil); err != nil {
		return fmt.Errorf("canvas: update assignment %d failed: %w", assignmentID, err)
	}
	return nil
}

func (c *Client) UpdateDiscussionTopic(ctx context.Context, topicID int, form url.Values) error {
	if err := c.sendForm(ctx, http.MethodPut, c.courseURL(fmt.Sprintf("discussion_topics/%d", topicID)), form, nil); err != nil {
		return fmt.Errorf("canvas: update discussion %d failed: %w", topicID, err)
	}
	return nil
}

func (c *Client) UpdatePage(ctx context.Context, slug string, form url.Values) error {
	if err := c.sendForm(ctx, http.MethodPut, c.courseURL("pages/"+url.PathEscape(slug)), form, nil); err != nil {
		return fmt.Errorf("canvas: update page %q failed: %w", slug, err)
	}
	return nil
}

// CreateSubHeader adds a Text Header (SubHeader) item at a position.
func (c *Client) CreateSubHeader(ctx context.Context, moduleID int, title string, position int) (int, error) {
	form := url.Values{}
	form.Set("module_item[title]", title)
	form.Set("module_item[type]", "SubHeader")
	form.Set("module_item[position]", strconv.Itoa(position))
	form.Set("module_item[indent]", "0")
	form.Set("module_item[published]", "true")

	var out createdItem
	if err := c.sendForm(ctx, http.MethodPost, c.courseURL(fmt.Sprintf("modules/%d/items", moduleID)), form, &out); err != nil {
		return 0, fmt.Errorf("canvas: create subheader in module %d failed: %w", moduleID, err)
	}
	return out.ID, nil
}

// AddModuleItem links a content entity (discussion, assignment, page) into
// a module.
func (c *Client) AddModuleItem(ctx context.Context, moduleID int, itemType string, contentID int, title string) (int, error) {
	form := url.Values{}
	form.Set("module_item[type]", itemType)
	form.Set("module_item[content_id]", strconv.Itoa(contentID))
	form.Set("module_item[title]", title)

	var out createdItem
	if err := c.sendForm(ctx, http.MethodPost, c.courseURL(fmt.Sprintf("modules/%d/items", moduleID)), form, &out); err != nil {
		return 0, fmt.Errorf("canvas: add %s item to module %d failed: %w", itemType, moduleID, err)
	}
	return out.ID, nil
}

// CreateRubric posts one rubric with the outcome's scale as a single
// criterion and returns the new rubric id.
func (c *Client) CreateRubric(ctx context.Context, o reconcile.LearningOutcome) (int, error) {
	ratings := o.Ratings
	if len(ratings) == 0 {
		// fallback two-level scale
		ratings = []reconcile.Rating{
			{Description: "Meets", Points: 5},
			{Description: "Incomplete", Points: 0},
		}
	}
	var points float64
	for _, r := range ratings {
		if r.Points > points {
			points = r.Points
		}
	}

	longDesc := o.Description
	if longDesc == "" {
		longDesc = o.Title
	}

	form := url.Values{}
	form.Set("rubric[title]", o.Title)
	form.Set("rubric[free_form_criterion_comments]", "false")
	form.Set("rubric[criteria][0][description]", o.Title)
	form.Set("rubric[criteria][0][long_description]", longDesc)
	form.Set("rubric[criteria][0][points]", strconv.FormatFloat(points, 'f', -1, 64))
	for i, r := range ratings {
		form.Set(fmt.Sprintf("rubric[criteria][0][ratings][%d][description]", i), r.Description)
		form.Set(fmt.Sprintf("rubric[criteria][0][ratings][%d][points]", i), strconv.FormatFloat(r.Points, 'f', -1, 64))
	}

	var out createdRubric
	if err := c.sendForm(ctx, http.MethodPost, c.courseURL("rubrics"), form, &out); err != nil {
		return 0, fmt.Errorf("canvas: create rubric %q failed: %w", o.Title, err)
	}
	if out.Rubric != nil {
		return out.Rubric.ID, nil
	}
	return out.ID, nil
}
