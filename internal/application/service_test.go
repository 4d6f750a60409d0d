package application

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/atvirokodosprendimai/assettrack/internal/adapters/blob"
	"github.com/atvirokodosprendimai/assettrack/internal/adapters/db/sqlstore"
	"github.com/atvirokodosprendimai/assettrack/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

type fixture struct {
	svc   *InventoryService
	repo  *sqlstore.Repository
	blobs *blob.Memory
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	db, err := sqlstore.Open(sqlstore.Options{Driver: sqlstore.DriverSQLite, DSN: filepath.Join(dir, "service_test.db")})
	require.NoError(t, err)
	require.NoError(t, sqlstore.RunMigrations(ctx, db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	repo := sqlstore.NewRepository(db)
	blobs := blob.NewMemory()
	svc := NewInventoryService(repo, blobs,
		WithStagingDir(filepath.Join(dir, "staging")),
		WithClock(func() time.Time { return fixedNow }),
	)
	return fixture{svc: svc, repo: repo, blobs: blobs}
}

// placeItem builds node, room, object and equipment and places one active item.
func (f fixture) placeItem(t *testing.T) (objectID, itemID string) {
	t.Helper()
	ctx := context.Background()

	node, err := f.svc.CreateNode(ctx, NodeInput{Name: "HQ", Location: "B-001", Building: "Main"})
	require.NoError(t, err)
	room, err := f.svc.CreateRoom(ctx, RoomInput{Floor: "1", Name: "Server room", NodeID: node.NodeID})
	require.NoError(t, err)
	objectID, err = f.svc.CreateObject(ctx, ObjectInput{RoomID: room.Room.RoomID, Name: "Rack A", Type: "rack"})
	require.NoError(t, err)
	equipeID, err := f.svc.CreateEquipment(ctx, EquipmentInput{
		Photo: "data:image/png;base64,AAAA", Name: "Switch", Type: "network", ModelNumber: "SW-1", Brand: "Acme",
	})
	require.NoError(t, err)
	itemID, err = f.svc.PlaceItem(ctx, objectID, PlaceItemInput{UserID: "U00000001", EquipeID: equipeID, SerialNumber: "SN-1"})
	require.NoError(t, err)
	return objectID, itemID
}

func TestUpdateItemWritesHistoryOnlyOnStatusChange(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	objectID, itemID := f.placeItem(t)

	res, err := f.svc.UpdateItem(ctx, itemID, ItemUpdateInput{Status: "active", ObjectID: objectID, Others: "rechecked"})
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Empty(t, res.StatusID)

	history, err := f.svc.ItemHistory(ctx, itemID)
	require.NoError(t, err)
	assert.Empty(t, history)

	item, err := f.repo.GetItem(ctx, itemID)
	require.NoError(t, err)
	assert.Equal(t, "active", item.Status)
	assert.Equal(t, "rechecked", item.Others)

	res, err = f.svc.UpdateItem(ctx, itemID, ItemUpdateInput{Status: "repair", ObjectID: objectID, Others: "fan noise"})
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, "S00000001", res.StatusID)

	history, err = f.svc.ItemHistory(ctx, itemID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "repair", history[0].Status)
	assert.Equal(t, itemID, history[0].ItemID)
	assert.Equal(t, "U00000001", history[0].UserID)
	assert.Equal(t, domain.FormatTime(fixedNow), history[0].CreateDate)

	item, err = f.repo.GetItem(ctx, itemID)
	require.NoError(t, err)
	assert.Equal(t, "repair", item.Status)
}

func TestChangeStatusFollowsDiffRule(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	objectID, itemID := f.placeItem(t)

	res, err := f.svc.ChangeStatus(ctx, StatusChangeInput{ItemID: itemID, ObjectID: objectID, Status: "active"})
	require.NoError(t, err)
	assert.False(t, res.Changed)

	res, err = f.svc.ChangeStatus(ctx, StatusChangeInput{ItemID: itemID, UserID: "U00000009", ObjectID: objectID, Status: "broken", Other: "dropped"})
	require.NoError(t, err)
	assert.True(t, res.Changed)

	res, err = f.svc.ChangeStatus(ctx, StatusChangeInput{ItemID: itemID, ObjectID: objectID, Status: "active"})
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, "S00000002", res.StatusID)

	history, err := f.svc.ItemHistory(ctx, itemID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "broken", history[0].Status)
	assert.Equal(t, "U00000009", history[0].UserID)
	assert.Equal(t, "dropped", history[0].Other)
	assert.Equal(t, "active", history[1].Status)
}

func TestStatusChangePreconditions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	objectID, itemID := f.placeItem(t)

	_, err := f.svc.UpdateItem(ctx, itemID, ItemUpdateInput{Status: "repair", ObjectID: "OBJ09999"})
	assert.ErrorIs(t, err, domain.ErrReferentialIntegrity)

	_, err = f.svc.UpdateItem(ctx, "I09999999", ItemUpdateInput{Status: "repair", ObjectID: objectID})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.ChangeStatus(ctx, StatusChangeInput{ItemID: itemID})
	assert.ErrorIs(t, err, domain.ErrValidation)

	history, err := f.svc.ItemHistory(ctx, itemID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestStatusChangeRollsBackOnAllocationConflict(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	objectID, itemID := f.placeItem(t)

	failing := &conflictRepo{InventoryRepository: f.repo}
	svc := NewInventoryService(failing, f.blobs, WithClock(func() time.Time { return fixedNow }))

	_, err := svc.UpdateItem(ctx, itemID, ItemUpdateInput{Status: "repair", ObjectID: objectID})
	require.ErrorIs(t, err, domain.ErrAllocationConflict)

	item, err := f.repo.GetItem(ctx, itemID)
	require.NoError(t, err)
	assert.Equal(t, "active", item.Status)
}

// conflictRepo reports every history allocation as taken.
type conflictRepo struct {
	domain.InventoryRepository
}

func (r *conflictRepo) WithinTx(ctx context.Context, fn func(tx domain.InventoryRepository) error) error {
	return r.InventoryRepository.WithinTx(ctx, func(tx domain.InventoryRepository) error {
		return fn(&conflictRepo{InventoryRepository: tx})
	})
}

func (r *conflictRepo) NextID(ctx context.Context, seq domain.Sequence) (string, error) {
	if seq == domain.HistorySeq {
		return "", domain.Conflict(seq.Table, "S00000001")
	}
	return r.InventoryRepository.NextID(ctx, seq)
}

func TestDeleteItemRemovesHistory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	objectID, itemID := f.placeItem(t)

	_, err := f.svc.UpdateItem(ctx, itemID, ItemUpdateInput{Status: "repair", ObjectID: objectID})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteItem(ctx, itemID))
	history, err := f.repo.ListHistory(ctx, itemID)
	require.NoError(t, err)
	assert.Empty(t, history)

	assert.ErrorIs(t, f.svc.DeleteItem(ctx, itemID), domain.ErrNotFound)
}

func TestPlaceItemRejectsDuplicateSerial(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	objectID, _ := f.placeItem(t)

	_, err := f.svc.PlaceItem(ctx, objectID, PlaceItemInput{UserID: "U00000001", EquipeID: "E00000001", SerialNumber: "SN-1"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = f.svc.PlaceItem(ctx, "OBJ09999", PlaceItemInput{UserID: "U00000001", EquipeID: "E00000001", SerialNumber: "SN-2"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	id, err := f.svc.CreateItem(ctx, ItemInput{
		UserID: "U00000001", EquipeID: "E00000001", SerialNumber: "SN-2", Status: "spare", Others: "boxed", ObjectID: objectID,
	})
	require.NoError(t, err)
	assert.Equal(t, "I00000002", id)

	_, err = f.svc.CreateItem(ctx, ItemInput{
		UserID: "U00000001", EquipeID: "E00000001", SerialNumber: "SN-3", Status: "spare", Others: "boxed", ObjectID: "OBJ09999",
	})
	assert.ErrorIs(t, err, domain.ErrReferentialIntegrity)
}

func TestEquipmentDuplicateMessages(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	in := EquipmentInput{Photo: "data:image/png;base64,AAAA", Name: "Router", Type: "network", ModelNumber: "RT-1", Brand: "Acme"}

	id, err := f.svc.CreateEquipment(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "E00000001", id)

	_, err = f.svc.CreateEquipment(ctx, in)
	require.ErrorIs(t, err, domain.ErrDuplicate)
	assert.Contains(t, err.Error(), "named Router")

	other := in
	other.Name = "Router 2"
	_, err = f.svc.CreateEquipment(ctx, other)
	require.ErrorIs(t, err, domain.ErrDuplicate)
	assert.Contains(t, err.Error(), "model number RT-1")

	bad := in
	bad.Photo = "https://example.com/router.png"
	_, err = f.svc.CreateEquipment(ctx, bad)
	assert.ErrorIs(t, err, domain.ErrValidation)

	require.NoError(t, f.svc.UpdateEquipment(ctx, id, in))

	missing := in
	missing.Name = "Firewall"
	missing.ModelNumber = "FW-9"
	assert.ErrorIs(t, f.svc.UpdateEquipment(ctx, "E09999999", missing), domain.ErrNotFound)
}

func TestUpdateEquipmentCreateDate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	in := EquipmentInput{Photo: "data:image/png;base64,AAAA", Name: "Router", Type: "network", ModelNumber: "RT-1", Brand: "Acme", CreateDate: "2024-01-01 08:00:00"}

	id, err := f.svc.CreateEquipment(ctx, in)
	require.NoError(t, err)

	in.CreateDate = "2024-02-03 10:00:00"
	require.NoError(t, f.svc.UpdateEquipment(ctx, id, in))
	got, err := f.svc.GetEquipment(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-03 10:00:00", got.CreateDate)

	// blank keeps the stored date
	in.CreateDate = ""
	in.Brand = "Acme Networks"
	require.NoError(t, f.svc.UpdateEquipment(ctx, id, in))
	got, err = f.svc.GetEquipment(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-03 10:00:00", got.CreateDate)
	assert.Equal(t, "Acme Networks", got.Brand)
}

func TestLocationCascades(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	objectID, itemID := f.placeItem(t)

	obj, err := f.repo.GetObject(ctx, objectID)
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.DeleteNode(ctx, obj.NodeID), domain.ErrReferentialIntegrity)
	assert.ErrorIs(t, f.svc.DeleteRoom(ctx, obj.RoomID), domain.ErrReferentialIntegrity)
	assert.ErrorIs(t, f.svc.DeleteObject(ctx, objectID), domain.ErrReferentialIntegrity)

	_, err = f.repo.GetRoom(ctx, obj.RoomID)
	require.NoError(t, err, "refused delete must not remove rows")

	require.NoError(t, f.svc.DeleteItem(ctx, itemID))
	require.NoError(t, f.svc.DeleteNode(ctx, obj.NodeID))

	_, err = f.repo.GetObject(ctx, objectID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.repo.GetRoom(ctx, obj.RoomID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, f.svc.DeleteNode(ctx, obj.NodeID), domain.ErrNotFound)
}

func TestCreateRoomAddsEmptySpace(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	node, err := f.svc.CreateNode(ctx, NodeInput{Name: "Branch", Location: "001"})
	require.NoError(t, err)
	assert.Equal(t, "N00000001", node.NodeID)

	_, err = f.svc.CreateNode(ctx, NodeInput{Name: "Other", Location: "001"})
	require.ErrorIs(t, err, domain.ErrDuplicate)
	assert.Contains(t, err.Error(), "number 001")

	created, err := f.svc.CreateRoom(ctx, RoomInput{Floor: "2", Name: "Lab", NodeID: node.NodeID})
	require.NoError(t, err)
	assert.Equal(t, "R00000001", created.Room.RoomID)
	assert.Equal(t, "OBJ00001", created.ObjectID)

	obj, err := f.repo.GetObject(ctx, created.ObjectID)
	require.NoError(t, err)
	assert.Equal(t, "Empty Space", obj.Name)
	assert.Equal(t, node.NodeID, obj.NodeID)

	_, err = f.svc.CreateRoom(ctx, RoomInput{Name: "Lab", NodeID: node.NodeID})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	_, err = f.svc.CreateRoom(ctx, RoomInput{Name: "Lab", NodeID: "N09999999"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, f.svc.UpdateRoom(ctx, "R09999999", RoomUpdateInput{Name: "x"}), domain.ErrNotFound)
	assert.ErrorIs(t, f.svc.UpdateNode(ctx, "N09999999", NodeUpdateInput{Name: "x", Location: "y"}), domain.ErrNotFound)
}

func TestNoteLifecycleDeletesImages(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.blobs.Put(ctx, "img1.jpg", strings.NewReader("one"), "image/jpeg")
	require.NoError(t, err)
	_, err = f.blobs.Put(ctx, "img2.jpg", strings.NewReader("two"), "image/jpeg")
	require.NoError(t, err)

	noteID, err := f.svc.CreateNote(ctx, NoteInput{
		UserID: "U00000001", Head: "Rack audit", Body: "all good",
		Images: []string{"uploads/img1.jpg", "uploads/img2.jpg"},
	})
	require.NoError(t, err)
	assert.Equal(t, "N00000001", noteID)

	images, err := f.svc.ListNoteImages(ctx, noteID)
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.Equal(t, "I00000001", images[0].ImageID)

	require.NoError(t, f.svc.UpdateNote(ctx, noteID, NoteInput{UserID: "U00000001", Head: "Rack audit", Images: []string{"uploads/img2.jpg"}}))
	images, err = f.svc.ListNoteImages(ctx, noteID)
	require.NoError(t, err)
	require.Len(t, images, 1)

	require.NoError(t, f.svc.DeleteNote(ctx, noteID))
	_, err = f.blobs.Head(ctx, "img2.jpg")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.blobs.Head(ctx, "img1.jpg")
	assert.NoError(t, err, "images no longer attached stay in the store")

	images, err = f.repo.ListNoteImages(ctx, noteID)
	require.NoError(t, err)
	assert.Empty(t, images)
	assert.ErrorIs(t, f.svc.DeleteNote(ctx, noteID), domain.ErrNotFound)
	assert.ErrorIs(t, f.svc.UpdateNote(ctx, noteID, NoteInput{UserID: "U00000001", Head: "x"}), domain.ErrNotFound)
}

func TestUsersAndLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.svc.BootstrapAdmin(ctx, "admin", "s3cret"))
	require.NoError(t, f.svc.BootstrapAdmin(ctx, "other", "ignored"))
	count, err := f.repo.CountUsers(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	_, err = f.svc.Login(ctx, LoginInput{Username: "admin", Password: "wrong"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = f.svc.Login(ctx, LoginInput{Username: "nobody", Password: "wrong"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = f.svc.Login(ctx, LoginInput{Username: "admin"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	res, err := f.svc.Login(ctx, LoginInput{Username: "admin", Password: "s3cret"})
	require.NoError(t, err)
	assert.Len(t, res.AccessToken, 32)
	assert.Equal(t, "U00000001", res.User.UserID)

	id, err := f.svc.Authenticate(ctx, res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", id.User.Username)
	_, err = f.svc.Authenticate(ctx, "deadbeef")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	summary, err := f.svc.CreateUser(ctx, UserInput{
		FirstName: "Ada", LastName: "Lovelace", Username: "ada", Password: "pw", Phone: "555", Email: "ada@example.com", RoleID: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, "U00000002", summary.UserID)
	assert.Equal(t, "Ada Lovelace", summary.Name)
	assert.Equal(t, "User", summary.RoleName)

	_, err = f.svc.CreateUser(ctx, UserInput{
		FirstName: "A", LastName: "B", Username: "ada", Password: "pw", Phone: "1", Email: "x@example.com", RoleID: 2,
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = f.svc.UpdateProfile(ctx, summary.UserID, ProfileInput{Username: "admin", Name: "Ada"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	profile, err := f.svc.UpdateProfile(ctx, summary.UserID, ProfileInput{Username: "ada.l", Name: "Ada L", Email: "ada@example.org", Phone: "556"})
	require.NoError(t, err)
	assert.Equal(t, "ada.l", profile.Username)

	// profile update without a password keeps the old one
	_, err = f.svc.Login(ctx, LoginInput{Username: "ada.l", Password: "pw"})
	require.NoError(t, err)

	err = f.svc.UpdateUser(ctx, "U09999999", UserInput{FirstName: "A", LastName: "B", Username: "zz", Phone: "1", Email: "e", RoleID: 2})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, f.svc.DeleteUser(ctx, "U09999999"), domain.ErrNotFound)
}

func TestValidationErrorKeepsFieldDetail(t *testing.T) {
	err := check(NodeInput{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.Contains(t, err.Error(), "name is required")
	assert.Contains(t, err.Error(), "location is required")
}
