// Package memdao provides in-memory accessors with the same contracts as the
// storage-backed ones. Tests across the module use them; failures can be
// injected per accessor through the Err fields.
package memdao

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"quiz-app/internal/dao"
	"quiz-app/internal/models"
	"quiz-app/internal/paging"

	"github.com/google/uuid"
)

type Tests struct {
	mu    sync.Mutex
	items map[string]models.Test
	clock int64
	Err   error
}

func NewTests() *Tests {
	return &Tests{items: make(map[string]models.Test), clock: time.Now().UnixMilli()}
}

func (d *Tests) Save(_ context.Context, test *models.Test) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return "", d.Err
	}

	doc := *test
	doc.Questions = slices.Clone(test.Questions)
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	for i := range doc.Questions {
		if doc.Questions[i].ID == "" {
			doc.Questions[i].ID = uuid.NewString()
		}
	}
	doc.SearchTitle = models.SearchKey(doc.Title)
	if stored, ok := d.items[doc.ID]; ok {
		doc.Timestamp = stored.Timestamp
	} else {
		d.clock++
		doc.Timestamp = d.clock
	}
	d.items[doc.ID] = doc
	return doc.ID, nil
}

func (d *Tests) Delete(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return d.Err
	}
	delete(d.items, id)
	return nil
}

func (d *Tests) Get(_ context.Context, id string) (*models.Test, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}
	test, ok := d.items[id]
	if !ok {
		return nil, nil
	}
	return &test, nil
}

// Page orders like the Mongo accessor and uses the offset as cursor.
func (d *Tests) Page(_ context.Context, query dao.TestQuery, params paging.LoadParams) (paging.Page[models.Test], error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return paging.Page[models.Test]{}, d.Err
	}

	search := models.SearchKey(strings.TrimSpace(query.Search))
	var matched []models.Test
	for _, t := range d.items {
		if query.TeacherID != "" && t.TeacherID != query.TeacherID {
			continue
		}
		if search != "" && !strings.HasPrefix(t.SearchTitle, search) {
			continue
		}
		matched = append(matched, t)
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		switch {
		case search != "":
			if a.SearchTitle != b.SearchTitle {
				return a.SearchTitle > b.SearchTitle
			}
			return a.ID > b.ID
		case query.Sort == models.SortOldest:
			if a.Timestamp != b.Timestamp {
				return a.Timestamp < b.Timestamp
			}
			return a.ID < b.ID
		default:
			if a.Timestamp != b.Timestamp {
				return a.Timestamp > b.Timestamp
			}
			return a.ID > b.ID
		}
	})

	return offsetPage(matched, params)
}

type Results struct {
	mu    sync.Mutex
	items map[[2]string]dao.ResultRecord
	Err   error
}

func NewResults() *Results {
	return &Results{items: make(map[[2]string]dao.ResultRecord)}
}

func (d *Results) Save(_ context.Context, record *dao.ResultRecord) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return d.Err
	}
	d.items[[2]string{record.TestID, record.UserID}] = *record
	return nil
}

func (d *Results) Get(_ context.Context, testID, userID string) (*dao.ResultRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}
	record, ok := d.items[[2]string{testID, userID}]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

func (d *Results) Page(_ context.Context, testID string, params paging.LoadParams) (paging.Page[dao.ResultRecord], error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return paging.Page[dao.ResultRecord]{}, d.Err
	}

	var matched []dao.ResultRecord
	for key, r := range d.items {
		if key[0] == testID {
			matched = append(matched, r)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].UserID < matched[j].UserID })
	return offsetPage(matched, params)
}

type UserDetails struct {
	mu    sync.Mutex
	items map[string]models.UserDetails
	Gets  int
	Err   error
}

func NewUserDetails() *UserDetails {
	return &UserDetails{items: make(map[string]models.UserDetails)}
}

func (d *UserDetails) Get(_ context.Context, userID string) (*models.UserDetails, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Gets++
	if d.Err != nil {
		return nil, d.Err
	}
	details, ok := d.items[userID]
	if !ok {
		return nil, nil
	}
	return &details, nil
}

func (d *UserDetails) Save(_ context.Context, details *models.UserDetails) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return d.Err
	}
	d.items[details.UserID] = *details
	return nil
}

// LocalUserDetails is an observable UserDetails.
type LocalUserDetails struct {
	UserDetails
	watchMu  sync.Mutex
	watchers map[string][]chan struct{}
}

func NewLocalUserDetails() *LocalUserDetails {
	return &LocalUserDetails{
		UserDetails: UserDetails{items: make(map[string]models.UserDetails)},
		watchers:    make(map[string][]chan struct{}),
	}
}

func (d *LocalUserDetails) Save(ctx context.Context, details *models.UserDetails) error {
	if err := d.UserDetails.Save(ctx, details); err != nil {
		return err
	}
	d.announce(details.UserID)
	return nil
}

func (d *LocalUserDetails) Delete(_ context.Context, userID string) error {
	d.mu.Lock()
	delete(d.items, userID)
	d.mu.Unlock()
	d.announce(userID)
	return nil
}

func (d *LocalUserDetails) announce(userID string) {
	d.watchMu.Lock()
	defer d.watchMu.Unlock()
	for _, w := range d.watchers[userID] {
		select {
		case w <- struct{}{}:
		default:
		}
	}
}

func (d *LocalUserDetails) Observe(ctx context.Context, userID string) (<-chan *models.UserDetails, error) {
	changed := make(chan struct{}, 1)
	d.watchMu.Lock()
	d.watchers[userID] = append(d.watchers[userID], changed)
	d.watchMu.Unlock()

	out := make(chan *models.UserDetails)
	go func() {
		defer close(out)
		defer func() {
			d.watchMu.Lock()
			defer d.watchMu.Unlock()
			d.watchers[userID] = slices.DeleteFunc(d.watchers[userID], func(c chan struct{}) bool { return c == changed })
		}()
		for {
			details, err := d.Get(ctx, userID)
			if err != nil {
				details = nil
			}
			select {
			case out <- details:
			case <-ctx.Done():
				return
			}
			select {
			case <-changed:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

type Images struct {
	mu     sync.Mutex
	Items  map[string][]byte
	Owners map[string]string
	Err    error
}

func NewImages() *Images {
	return &Images{Items: make(map[string][]byte), Owners: make(map[string]string)}
}

func (d *Images) Upload(_ context.Context, id, owner string, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return d.Err
	}
	d.Items[id] = slices.Clone(data)
	d.Owners[id] = owner
	return nil
}

func (d *Images) Owner(_ context.Context, id string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return "", d.Err
	}
	if _, ok := d.Items[id]; !ok {
		return "", dao.ErrImageNotFound
	}
	return d.Owners[id], nil
}

func (d *Images) Delete(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return d.Err
	}
	delete(d.Items, id)
	delete(d.Owners, id)
	return nil
}

func (d *Images) Link(_ context.Context, id string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return "", d.Err
	}
	return "memory://images/" + id + ".jpg", nil
}

func (d *Images) Has(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.Items[id]
	return ok
}

type account struct {
	userID   string
	password string
}

// UserAuth keeps accounts and sessions in maps. Passwords are stored as
// given.
type UserAuth struct {
	mu       sync.Mutex
	accounts map[string]account
	sessions map[string]string
	watchers map[string][]chan struct{}
	Err      error
}

func NewUserAuth() *UserAuth {
	return &UserAuth{
		accounts: make(map[string]account),
		sessions: make(map[string]string),
		watchers: make(map[string][]chan struct{}),
	}
}

func (d *UserAuth) SignUp(_ context.Context, credential models.Credential) (models.Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return models.Session{}, d.Err
	}
	email := strings.ToLower(credential.Email)
	if _, ok := d.accounts[email]; ok {
		return models.Session{}, dao.ErrEmailTaken
	}
	userID := uuid.NewString()
	d.accounts[email] = account{userID: userID, password: credential.Password}
	return d.newSession(userID), nil
}

func (d *UserAuth) LogIn(_ context.Context, credential models.Credential) (models.Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return models.Session{}, d.Err
	}
	acc, ok := d.accounts[strings.ToLower(credential.Email)]
	if !ok {
		return models.Session{}, dao.ErrAccountNotFound
	}
	if acc.password != credential.Password {
		return models.Session{}, dao.ErrWrongPassword
	}
	return d.newSession(acc.userID), nil
}

func (d *UserAuth) newSession(userID string) models.Session {
	session := models.Session{ID: uuid.NewString(), UserID: userID}
	d.sessions[session.ID] = userID
	return session
}

func (d *UserAuth) LogOut(_ context.Context, sessionID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return d.Err
	}
	delete(d.sessions, sessionID)
	for _, w := range d.watchers[sessionID] {
		select {
		case w <- struct{}{}:
		default:
		}
	}
	return nil
}

func (d *UserAuth) CurrentUserID(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return "", d.Err
	}
	session, ok := dao.SessionFromContext(ctx)
	if !ok {
		return "", nil
	}
	return d.sessions[session.ID], nil
}

func (d *UserAuth) ObserveUserID(ctx context.Context) (<-chan string, error) {
	session, ok := dao.SessionFromContext(ctx)
	changed := make(chan struct{}, 1)
	if ok {
		d.mu.Lock()
		d.watchers[session.ID] = append(d.watchers[session.ID], changed)
		d.mu.Unlock()
	}

	out := make(chan string)
	go func() {
		defer close(out)
		for {
			userID, _ := d.CurrentUserID(ctx)
			select {
			case out <- userID:
			case <-ctx.Done():
				return
			}
			if userID == "" {
				return
			}
			select {
			case <-changed:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// SessionContext logs in and returns a context carrying the session.
func (d *UserAuth) SessionContext(ctx context.Context, email, password string) (context.Context, error) {
	session, err := d.LogIn(ctx, models.Credential{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	return dao.ContextWithSession(ctx, session), nil
}

func offsetPage[T any](items []T, params paging.LoadParams) (paging.Page[T], error) {
	start := 0
	if params.Cursor != "" {
		k, err := paging.DecodeCursor(params.Cursor)
		if err != nil {
			return paging.Page[T]{}, err
		}
		n, err := k.Int64()
		if err != nil {
			return paging.Page[T]{}, err
		}
		start = int(n)
	}
	start = min(start, len(items))
	end := min(start+params.LoadSize, len(items))

	page := paging.Page[T]{Items: slices.Clone(items[start:end])}
	if page.Items == nil {
		page.Items = []T{}
	}
	if params.LoadSize > 0 && end-start == params.LoadSize {
		next, err := paging.EncodeCursor(paging.Key{Sort: int64(end), ID: "offset"})
		if err != nil {
			return paging.Page[T]{}, err
		}
		page.NextCursor = &next
	}
	return page, nil
}

var (
	_ dao.TestDAO             = (*Tests)(nil)
	_ dao.TestResultDAO       = (*Results)(nil)
	_ dao.UserDetailsDAO      = (*UserDetails)(nil)
	_ dao.LocalUserDetailsDAO = (*LocalUserDetails)(nil)
	_ dao.ImageDAO            = (*Images)(nil)
	_ dao.UserAuthDAO         = (*UserAuth)(nil)
)
