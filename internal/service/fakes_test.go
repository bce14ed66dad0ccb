package service_test

import (
	"sync"
	"time"

	appErrors "github.com/unclebandit/campaign-manager-backend/internal/errors"
	"github.com/unclebandit/campaign-manager-backend/internal/model"
)

// In-memory fakes shared by the service tests.

type fakeRecipientRepo struct {
	mu          sync.Mutex
	nextID      int
	byEmail     map[string]*model.Recipient
	upsertCalls int
}

func newFakeRecipientRepo() *fakeRecipientRepo {
	return &fakeRecipientRepo{byEmail: map[string]*model.Recipient{}}
}

func (f *fakeRecipientRepo) FindByEmail(email string) (*model.Recipient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.byEmail[email]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeRecipientRepo) Upsert(email string, name *string) (*model.Recipient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upsertCalls++
	if r, ok := f.byEmail[email]; ok {
		cp := *r
		return &cp, nil
	}
	f.nextID++
	r := &model.Recipient{ID: f.nextID, Email: email, Name: name, CreatedAt: time.Now()}
	f.byEmail[email] = r
	cp := *r
	return &cp, nil
}

func (f *fakeRecipientRepo) SetOptOut(email string, optOut bool, reason *string) (*model.Recipient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.byEmail[email]
	if !ok {
		return nil, appErrors.NewRecipientNotFound(email)
	}
	r.OptOut = optOut
	r.OptOutReason = reason
	cp := *r
	return &cp, nil
}

func (f *fakeRecipientRepo) Update(id int, name *string, groupID *int, optOut *bool) (*model.Recipient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.byEmail {
		if r.ID != id {
			continue
		}
		if name != nil {
			r.Name = name
		}
		if groupID != nil {
			r.GroupID = groupID
		}
		if optOut != nil {
			r.OptOut = *optOut
		}
		cp := *r
		return &cp, nil
	}
	return nil, &appErrors.ErrNotFound{Resource: "recipient", Key: id}
}

func (f *fakeRecipientRepo) List(includeOptedOut bool) ([]model.Recipient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Recipient{}
	for _, r := range f.byEmail {
		if !includeOptedOut && r.OptOut {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeRecipientRepo) AssignGroup(recipientID, groupID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.byEmail {
		if r.ID == recipientID {
			g := groupID
			r.GroupID = &g
			return nil
		}
	}
	return &appErrors.ErrNotFound{Resource: "recipient", Key: recipientID}
}

type fakeCampaignRepo struct {
	mu         sync.Mutex
	nextID     int
	campaigns  map[int]*model.Campaign
	links      map[int]map[int]bool // campaign id -> recipient ids
	linkCalls  int
	recipients *fakeRecipientRepo

	statusWrites []model.CampaignStatus
	failStatus   error // injected UpdateStatus failure
}

func newFakeCampaignRepo(recipients *fakeRecipientRepo) *fakeCampaignRepo {
	return &fakeCampaignRepo{
		campaigns:  map[int]*model.Campaign{},
		links:      map[int]map[int]bool{},
		recipients: recipients,
	}
}

func (f *fakeCampaignRepo) Create(c *model.Campaign) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	c.ID = f.nextID
	c.CreatedAt = time.Now()
	if c.Status == "" {
		c.Status = model.StatusPending
	}
	cp := *c
	f.campaigns[c.ID] = &cp
	return nil
}

func (f *fakeCampaignRepo) GetByID(id int) (*model.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.campaigns[id]
	if !ok {
		return nil, appErrors.NewCampaignNotFound(id)
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCampaignRepo) ListCampaigns(offset, limit int, status string) ([]*model.Campaign, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*model.Campaign{}
	for _, c := range f.campaigns {
		if status != "" && string(c.Status) != status {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	total := len(out)
	if offset > len(out) {
		offset = len(out)
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], total, nil
}

func (f *fakeCampaignRepo) UpdateStatus(campaignID int, status model.CampaignStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failStatus != nil {
		return f.failStatus
	}
	c, ok := f.campaigns[campaignID]
	if !ok {
		return appErrors.NewCampaignNotFound(campaignID)
	}
	c.Status = status
	f.statusWrites = append(f.statusWrites, status)
	return nil
}

func (f *fakeCampaignRepo) Link(campaignID, recipientID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.linkCalls++
	if f.links[campaignID] == nil {
		f.links[campaignID] = map[int]bool{}
	}
	f.links[campaignID][recipientID] = true
	return nil
}

func (f *fakeCampaignRepo) ListEligible(campaignID int) ([]model.Recipient, error) {
	return f.listAssociated(campaignID, true)
}

func (f *fakeCampaignRepo) ListLinked(campaignID int) ([]model.Recipient, error) {
	return f.listAssociated(campaignID, false)
}

func (f *fakeCampaignRepo) listAssociated(campaignID int, eligibleOnly bool) ([]model.Recipient, error) {
	f.mu.Lock()
	linked := f.links[campaignID]
	f.mu.Unlock()

	f.recipients.mu.Lock()
	defer f.recipients.mu.Unlock()
	out := []model.Recipient{}
	for _, r := range f.recipients.byEmail {
		if !linked[r.ID] {
			continue
		}
		if eligibleOnly && r.OptOut {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeCampaignRepo) linkCount(campaignID int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.links[campaignID])
}

type fakeDeliveryRepo struct {
	mu      sync.Mutex
	records map[[2]int]*model.Delivery
}

func newFakeDeliveryRepo() *fakeDeliveryRepo {
	return &fakeDeliveryRepo{records: map[[2]int]*model.Delivery{}}
}

func (f *fakeDeliveryRepo) Record(campaignID, recipientID int, email string, status model.DeliveryStatus, lastError string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[[2]int{campaignID, recipientID}] = &model.Delivery{
		CampaignID:  campaignID,
		RecipientID: recipientID,
		Email:       email,
		Status:      status,
		LastError:   lastError,
	}
	return nil
}

func (f *fakeDeliveryRepo) ListFailed(campaignID int) ([]model.Delivery, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Delivery{}
	for _, d := range f.records {
		if d.CampaignID == campaignID && d.Status == model.DeliveryFailed {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeDeliveryRepo) Stats(campaignID int) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := map[string]int{"sent": 0, "failed": 0}
	for _, d := range f.records {
		if d.CampaignID == campaignID {
			stats[string(d.Status)]++
		}
	}
	return stats, nil
}

type fakeGroupRepo struct {
	mu     sync.Mutex
	nextID int
	groups map[int]*model.Group
}

func newFakeGroupRepo() *fakeGroupRepo {
	return &fakeGroupRepo{groups: map[int]*model.Group{}}
}

func (f *fakeGroupRepo) Create(g *model.Group) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	g.ID = f.nextID
	g.CreatedAt = time.Now()
	cp := *g
	f.groups[g.ID] = &cp
	return nil
}

func (f *fakeGroupRepo) GetByID(id int) (*model.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.groups[id]
	if !ok {
		return nil, appErrors.NewGroupNotFound(id)
	}
	cp := *g
	return &cp, nil
}

func (f *fakeGroupRepo) Update(id int, name, description *string) (*model.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.groups[id]
	if !ok {
		return nil, appErrors.NewGroupNotFound(id)
	}
	if name != nil {
		g.Name = *name
	}
	if description != nil {
		g.Description = description
	}
	cp := *g
	return &cp, nil
}

func (f *fakeGroupRepo) List() ([]model.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Group{}
	for _, g := range f.groups {
		out = append(out, *g)
	}
	return out, nil
}
