package devserver

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base32"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"mops-cli/internal/model"

	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("not found")

// DB is the development backend's storage. Each entity is one row holding its
// JSON encoding, plus the handful of columns queries filter on.
type DB struct {
	sql *sql.DB
	now func() time.Time
}

// OpenDB opens (and migrates) a SQLite database. Use ":memory:" for a
// throwaway database.
func OpenDB(ctx context.Context, path string) (*DB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("devserver: db path is empty")
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		// Every pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	out := &DB{sql: db, now: func() time.Time { return time.Now().UTC() }}
	if err := out.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return out, nil
}

func (d *DB) Close() error { return d.sql.Close() }

func (d *DB) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS campaigns (
			id TEXT PRIMARY KEY,
			org_id TEXT NOT NULL,
			name TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at_unixms INTEGER NOT NULL,
			json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_campaigns_org ON campaigns(org_id, created_at_unixms);`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			campaign_id TEXT NOT NULL,
			parent_id TEXT NOT NULL,
			created_at_unixms INTEGER NOT NULL,
			json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_campaign ON tasks(campaign_id, created_at_unixms);`,
		`CREATE TABLE IF NOT EXISTS members (
			id TEXT PRIMARY KEY,
			campaign_id TEXT NOT NULL,
			json TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS labels (
			id TEXT PRIMARY KEY,
			campaign_id TEXT NOT NULL,
			json TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS milestones (
			id TEXT PRIMARY KEY,
			campaign_id TEXT NOT NULL,
			json TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS contents (
			id TEXT PRIMARY KEY,
			campaign_id TEXT NOT NULL,
			json TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS schedules (
			id TEXT PRIMARY KEY,
			content_id TEXT NOT NULL,
			campaign_id TEXT NOT NULL,
			scheduled_at_unixms INTEGER NOT NULL,
			json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_schedules_at ON schedules(scheduled_at_unixms);`,
	}
	for _, st := range stmts {
		if _, err := d.sql.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

// newRandomID returns prefix-<suffix> where suffix is 8 chars of lowercase base32.
func newRandomID(prefix string) string {
	var b [5]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(fmt.Sprintf("devserver: read random: %v", err))
	}
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	return prefix + "-" + strings.ToLower(enc.EncodeToString(b[:]))
}

func readJSONRows[T any](ctx context.Context, db *sql.DB, query string, args ...any) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var js string
		if err := rows.Scan(&js); err != nil {
			return nil, err
		}
		var v T
		if err := json.Unmarshal([]byte(js), &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func readJSONRow[T any](ctx context.Context, db *sql.DB, query string, args ...any) (T, error) {
	var v T
	var js string
	if err := db.QueryRowContext(ctx, query, args...).Scan(&js); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return v, ErrNotFound
		}
		return v, err
	}
	if err := json.Unmarshal([]byte(js), &v); err != nil {
		return v, err
	}
	return v, nil
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("devserver: encode %T: %v", v, err))
	}
	return string(b)
}

// CampaignQuery filters and pages the campaign list.
type CampaignQuery struct {
	Page     int
	Limit    int
	Statuses []model.CampaignStatus
	Search   string
	Sort     string
}

func (d *DB) ListCampaigns(ctx context.Context, orgID string, q CampaignQuery) ([]model.Campaign, model.Pagination, error) {
	where := []string{"org_id = ?"}
	args := []any{orgID}
	if len(q.Statuses) > 0 {
		marks := make([]string, 0, len(q.Statuses))
		for _, s := range q.Statuses {
			marks = append(marks, "?")
			args = append(args, string(s))
		}
		where = append(where, "status IN ("+strings.Join(marks, ",")+")")
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		where = append(where, `(LOWER(name) LIKE ? ESCAPE '\'
			OR LOWER(COALESCE(json_extract(json, '$.summary'), '')) LIKE ? ESCAPE '\'
			OR LOWER(COALESCE(json_extract(json, '$.description'), '')) LIKE ? ESCAPE '\')`)
		pat := "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
		args = append(args, pat, pat, pat)
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := d.sql.QueryRowContext(ctx, `SELECT COUNT(1) FROM campaigns WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, model.Pagination{}, err
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	meta := model.NewPagination(q.Page, limit, total)

	order := campaignOrder(q.Sort)
	pageArgs := append(append([]any(nil), args...), limit, (meta.Page-1)*limit)
	cs, err := readJSONRows[model.Campaign](ctx, d.sql,
		`SELECT json FROM campaigns WHERE `+cond+` ORDER BY `+order+` LIMIT ? OFFSET ?`, pageArgs...)
	if err != nil {
		return nil, model.Pagination{}, err
	}
	for i := range cs {
		if err := d.fillCounts(ctx, &cs[i]); err != nil {
			return nil, model.Pagination{}, err
		}
	}
	if cs == nil {
		cs = []model.Campaign{}
	}
	return cs, meta, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// campaignOrder maps a list sort to its ORDER BY clause. Unknown sorts list
// newest first; ties fall back to id like the client-side sorts.
func campaignOrder(by string) string {
	switch by {
	case "oldest":
		return "created_at_unixms ASC, id"
	case "name":
		return "LOWER(name) ASC, id"
	case "size":
		return "(SELECT COUNT(1) FROM tasks t WHERE t.campaign_id = campaigns.id AND t.parent_id = '') DESC, id"
	case "priority":
		return `CASE json_extract(json, '$.priority')
			WHEN 'URGENT' THEN 4 WHEN 'HIGH' THEN 3 WHEN 'MEDIUM' THEN 2 WHEN 'LOW' THEN 1
			ELSE 0 END DESC, id`
	case "due":
		return "json_extract(json, '$.targetDate') IS NULL, julianday(json_extract(json, '$.targetDate')) ASC, id"
	default:
		return "created_at_unixms DESC, id"
	}
}

func (d *DB) fillCounts(ctx context.Context, c *model.Campaign) error {
	counts := []struct {
		query string
		dst   *int
	}{
		{`SELECT COUNT(1) FROM tasks WHERE campaign_id = ? AND parent_id = ''`, &c.Count.Tasks},
		{`SELECT COUNT(1) FROM members WHERE campaign_id = ?`, &c.Count.Members},
		{`SELECT COUNT(1) FROM contents WHERE campaign_id = ?`, &c.Count.Contents},
	}
	for _, q := range counts {
		if err := d.sql.QueryRowContext(ctx, q.query, c.ID).Scan(q.dst); err != nil {
			return err
		}
	}
	return nil
}

// Campaign returns the stored campaign row without relations.
func (d *DB) Campaign(ctx context.Context, orgID, id string) (model.Campaign, error) {
	return readJSONRow[model.Campaign](ctx, d.sql, `SELECT json FROM campaigns WHERE id = ? AND org_id = ?`, id, orgID)
}

// GetCampaign returns a campaign with its members and contents attached.
func (d *DB) GetCampaign(ctx context.Context, orgID, id string) (model.Campaign, error) {
	c, err := d.Campaign(ctx, orgID, id)
	if err != nil {
		return model.Campaign{}, err
	}
	if c.Members, err = d.ListMembers(ctx, id); err != nil {
		return model.Campaign{}, err
	}
	if c.Contents, err = readJSONRows[model.Content](ctx, d.sql, `SELECT json FROM contents WHERE campaign_id = ? ORDER BY id`, id); err != nil {
		return model.Campaign{}, err
	}
	if err := d.fillCounts(ctx, &c); err != nil {
		return model.Campaign{}, err
	}
	return c, nil
}

func (d *DB) PutCampaign(ctx context.Context, c model.Campaign) error {
	// Relations live in their own tables.
	stored := c
	stored.Members, stored.Tasks, stored.Contents = nil, nil, nil
	stored.Count = model.CampaignCount{}
	_, err := d.sql.ExecContext(ctx,
		`INSERT OR REPLACE INTO campaigns(id, org_id, name, status, created_at_unixms, json, updated_at_unixms) VALUES(?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.OrgID, c.Name, string(c.Status), c.CreatedAt.UnixMilli(), mustJSON(stored), d.now().UnixMilli())
	return err
}

func (d *DB) DeleteCampaign(ctx context.Context, orgID, id string) error {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM campaigns WHERE id = ? AND org_id = ?`, id, orgID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	for _, t := range []string{"tasks", "members", "labels", "milestones", "contents", "schedules"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+t+` WHERE campaign_id = ?`, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListTasks returns top-level tasks with their subtasks nested, oldest first.
func (d *DB) ListTasks(ctx context.Context, campaignID string) ([]model.Task, error) {
	all, err := readJSONRows[model.Task](ctx, d.sql, `SELECT json FROM tasks WHERE campaign_id = ? ORDER BY created_at_unixms, id`, campaignID)
	if err != nil {
		return nil, err
	}
	children := map[string][]model.Task{}
	for _, t := range all {
		if t.IsSubtask() {
			children[*t.ParentTaskID] = append(children[*t.ParentTaskID], t)
		}
	}
	out := []model.Task{}
	for _, t := range all {
		if t.IsSubtask() {
			continue
		}
		t.Subtasks = children[t.ID]
		t.Count.Subtasks = len(t.Subtasks)
		out = append(out, t)
	}
	return out, nil
}

func (d *DB) GetTask(ctx context.Context, campaignID, id string) (model.Task, error) {
	t, err := readJSONRow[model.Task](ctx, d.sql, `SELECT json FROM tasks WHERE id = ? AND campaign_id = ?`, id, campaignID)
	if err != nil {
		return model.Task{}, err
	}
	var n int
	if err := d.sql.QueryRowContext(ctx, `SELECT COUNT(1) FROM tasks WHERE parent_id = ?`, id).Scan(&n); err != nil {
		return model.Task{}, err
	}
	t.Count.Subtasks = n
	return t, nil
}

func (d *DB) PutTask(ctx context.Context, t model.Task) error {
	parent := ""
	if t.ParentTaskID != nil {
		parent = *t.ParentTaskID
	}
	stored := t
	stored.Subtasks = nil
	stored.Count = model.TaskCount{}
	_, err := d.sql.ExecContext(ctx,
		`INSERT OR REPLACE INTO tasks(id, campaign_id, parent_id, created_at_unixms, json, updated_at_unixms) VALUES(?, ?, ?, ?, ?, ?)`,
		t.ID, t.CampaignID, parent, t.CreatedAt.UnixMilli(), mustJSON(stored), d.now().UnixMilli())
	return err
}

// DeleteTask removes a task and its subtasks.
func (d *DB) DeleteTask(ctx context.Context, campaignID, id string) error {
	res, err := d.sql.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND campaign_id = ?`, id, campaignID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	_, err = d.sql.ExecContext(ctx, `DELETE FROM tasks WHERE parent_id = ?`, id)
	return err
}

func (d *DB) ListMembers(ctx context.Context, campaignID string) ([]model.Member, error) {
	out, err := readJSONRows[model.Member](ctx, d.sql, `SELECT json FROM members WHERE campaign_id = ? ORDER BY id`, campaignID)
	if out == nil && err == nil {
		out = []model.Member{}
	}
	return out, err
}

func (d *DB) ListLabels(ctx context.Context, campaignID string) ([]model.Label, error) {
	out, err := readJSONRows[model.Label](ctx, d.sql, `SELECT json FROM labels WHERE campaign_id = ? ORDER BY id`, campaignID)
	if out == nil && err == nil {
		out = []model.Label{}
	}
	return out, err
}

func (d *DB) ListMilestones(ctx context.Context, campaignID string) ([]model.Milestone, error) {
	out, err := readJSONRows[model.Milestone](ctx, d.sql, `SELECT json FROM milestones WHERE campaign_id = ? ORDER BY id`, campaignID)
	if out == nil && err == nil {
		out = []model.Milestone{}
	}
	return out, err
}

func (d *DB) PutMember(ctx context.Context, m model.Member) error {
	_, err := d.sql.ExecContext(ctx, `INSERT OR REPLACE INTO members(id, campaign_id, json) VALUES(?, ?, ?)`, m.ID, m.CampaignID, mustJSON(m))
	return err
}

func (d *DB) PutLabel(ctx context.Context, l model.Label) error {
	_, err := d.sql.ExecContext(ctx, `INSERT OR REPLACE INTO labels(id, campaign_id, json) VALUES(?, ?, ?)`, l.ID, l.CampaignID, mustJSON(l))
	return err
}

func (d *DB) PutMilestone(ctx context.Context, m model.Milestone) error {
	_, err := d.sql.ExecContext(ctx, `INSERT OR REPLACE INTO milestones(id, campaign_id, json) VALUES(?, ?, ?)`, m.ID, m.CampaignID, mustJSON(m))
	return err
}

func (d *DB) PutContent(ctx context.Context, c model.Content) error {
	_, err := d.sql.ExecContext(ctx, `INSERT OR REPLACE INTO contents(id, campaign_id, json) VALUES(?, ?, ?)`, c.ID, c.CampaignID, mustJSON(c))
	return err
}

func (d *DB) GetContent(ctx context.Context, id string) (model.Content, error) {
	return readJSONRow[model.Content](ctx, d.sql, `SELECT json FROM contents WHERE id = ?`, id)
}

// ListSchedules returns the org's schedules in [from, to); a zero bound is open.
func (d *DB) ListSchedules(ctx context.Context, orgID string, from, to time.Time) ([]model.Schedule, error) {
	lo, hi := int64(0), int64(1<<62)
	if !from.IsZero() {
		lo = from.UnixMilli()
	}
	if !to.IsZero() {
		hi = to.UnixMilli()
	}
	out, err := readJSONRows[model.Schedule](ctx, d.sql,
		`SELECT json FROM schedules
		 WHERE campaign_id IN (SELECT id FROM campaigns WHERE org_id = ?)
		   AND scheduled_at_unixms >= ? AND scheduled_at_unixms < ?
		 ORDER BY scheduled_at_unixms, id`, orgID, lo, hi)
	if out == nil && err == nil {
		out = []model.Schedule{}
	}
	return out, err
}

func (d *DB) PutSchedule(ctx context.Context, s model.Schedule) error {
	_, err := d.sql.ExecContext(ctx,
		`INSERT OR REPLACE INTO schedules(id, content_id, campaign_id, scheduled_at_unixms, json) VALUES(?, ?, ?, ?, ?)`,
		s.ID, s.ContentID, s.CampaignID, s.ScheduledAt.UnixMilli(), mustJSON(s))
	return err
}
