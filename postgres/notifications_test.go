package postgres_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	an "github.com/sergii/activity-notification"
	"github.com/sergii/activity-notification/postgres"
)

func insertNotifications(t *testing.T, db *postgres.DB) []an.Notification {
	t.Helper()
	notifications := []an.Notification{
		{TargetType: "users", TargetID: 1, Key: "article.commented", NotifiableType: "comments", NotifiableID: 10},
		{TargetType: "users", TargetID: 1, Key: "article.liked", NotifiableType: "likes", NotifiableID: 11},
		{TargetType: "users", TargetID: 2, Key: "article.commented", NotifiableType: "comments", NotifiableID: 12},
	}
	err := db.Create(&notifications)
	require.Nil(t, err)

	return notifications
}

func insertGroupedNotifications(t *testing.T, db *postgres.DB) (an.Notification, []an.Notification) {
	t.Helper()
	owner := an.Notification{
		TargetType:     "users",
		TargetID:       1,
		Key:            "article.commented",
		NotifiableType: "comments",
		NotifiableID:   20,
		GroupType:      "articles",
		GroupID:        7,
	}
	require.Nil(t, db.Create(&owner))

	members := []an.Notification{
		{
			TargetType:     "users",
			TargetID:       1,
			Key:            "article.commented",
			NotifiableType: "comments",
			NotifiableID:   21,
			GroupType:      "articles",
			GroupID:        7,
			GroupOwnerID:   &owner.ID,
		},
		{
			TargetType:     "users",
			TargetID:       1,
			Key:            "article.commented",
			NotifiableType: "comments",
			NotifiableID:   22,
			GroupType:      "articles",
			GroupID:        7,
			GroupOwnerID:   &owner.ID,
		},
	}
	require.Nil(t, db.Create(&members))

	return owner, members
}

func (suite *DBTestSuite) TestNotificationsList() {
	// Arrange
	store := postgres.NewNotificationStore(suite.db)
	q := postgres.NotificationQuery{TargetType: "users", TargetID: 1}

	// Act
	actual, err := store.List(q)

	// Assert
	suite.Require().Nil(err)
	suite.Require().Len(actual, 0)

	// Arrange
	notifications := insertNotifications(suite.T(), suite.db)

	// Act
	actual, err = store.List(q)

	// Assert
	suite.Require().Nil(err)
	suite.Require().Len(actual, 2)
	suite.Require().Equal(notifications[1].ID, actual[0].ID)
	suite.Require().Equal(notifications[0].ID, actual[1].ID)

	// Arrange
	q.Reverse = true

	// Act
	actual, err = store.List(q)

	// Assert
	suite.Require().Nil(err)
	suite.Require().Len(actual, 2)
	suite.Require().Equal(notifications[0].ID, actual[0].ID)

	// Arrange
	q.Reverse = false
	q.FilteredByKey = "article.liked"

	// Act
	actual, err = store.List(q)

	// Assert
	suite.Require().Nil(err)
	suite.Require().Len(actual, 1)
	suite.Require().Equal("article.liked", actual[0].Key)

	// Arrange
	q.FilteredByKey = ""
	q.FilteredByType = "comments"

	// Act
	actual, err = store.List(q)

	// Assert
	suite.Require().Nil(err)
	suite.Require().Len(actual, 1)
	suite.Require().Equal(notifications[0].ID, actual[0].ID)

	// Arrange
	q.FilteredByType = ""
	q.Limit = 1

	// Act
	actual, err = store.List(q)

	// Assert
	suite.Require().Nil(err)
	suite.Require().Len(actual, 1)

	// Arrange
	q.Limit = 0
	suite.Require().Nil(store.Open(&notifications[0], time.Now()))

	q.Filter = an.FilterOpened

	// Act
	actual, err = store.List(q)

	// Assert
	suite.Require().Nil(err)
	suite.Require().Len(actual, 1)
	suite.Require().Equal(notifications[0].ID, actual[0].ID)

	// Arrange
	q.Filter = an.FilterUnopened

	// Act
	actual, err = store.List(q)

	// Assert
	suite.Require().Nil(err)
	suite.Require().Len(actual, 1)
	suite.Require().Equal(notifications[1].ID, actual[0].ID)
}

func (suite *DBTestSuite) TestNotificationsList_Groups() {
	// Arrange
	store := postgres.NewNotificationStore(suite.db)
	owner, members := insertGroupedNotifications(suite.T(), suite.db)

	q := postgres.NotificationQuery{TargetType: "users", TargetID: 1}

	// Act
	actual, err := store.List(q)

	// Assert
	suite.Require().Nil(err)
	suite.Require().Len(actual, 1)
	suite.Require().Equal(owner.ID, actual[0].ID)

	// Arrange
	q.WithGroupMembers = true

	// Act
	actual, err = store.List(q)

	// Assert
	suite.Require().Nil(err)
	suite.Require().Len(actual, 3)
	suite.Require().Equal(members[1].ID, actual[0].ID)
	suite.Require().Equal(members[0].ID, actual[1].ID)
	suite.Require().Equal(owner.ID, actual[2].ID)

	// Arrange
	q.GroupType, q.GroupID = "articles", 7

	// Act
	actual, err = store.List(q)

	// Assert
	suite.Require().Nil(err)
	suite.Require().Len(actual, 3)

	// Arrange
	q.GroupID = 8

	// Act
	actual, err = store.List(q)

	// Assert
	suite.Require().Nil(err)
	suite.Require().Len(actual, 0)
}

func (suite *DBTestSuite) TestNotificationsPaged() {
	// Arrange
	store := postgres.NewNotificationStore(suite.db)
	notifications := insertNotifications(suite.T(), suite.db)

	q := postgres.NotificationQuery{TargetType: "users", TargetID: 1}

	// Act
	actual, err := store.Paged(q, 1, 1)

	// Assert
	suite.Require().Nil(err)
	suite.Require().Equal(int64(1), actual.Page)
	suite.Require().Equal(int64(1), actual.PerPage)
	suite.Require().Equal(int64(2), actual.TotalItems)
	suite.Require().Equal(int64(2), actual.TotalPages)

	v, ok := actual.Items.(*[]an.Notification)
	suite.Require().True(ok)
	suite.Require().Len(*v, 1)
	suite.Require().Equal(notifications[1].ID, (*v)[0].ID)

	// Act
	actual, err = store.Paged(q, 2, 1)

	// Assert
	suite.Require().Nil(err)
	suite.Require().Equal(int64(2), actual.Page)

	v, ok = actual.Items.(*[]an.Notification)
	suite.Require().True(ok)
	suite.Require().Len(*v, 1)
	suite.Require().Equal(notifications[0].ID, (*v)[0].ID)
}

func (suite *DBTestSuite) TestNotificationsFind() {
	// Arrange
	store := postgres.NewNotificationStore(suite.db)
	notifications := insertNotifications(suite.T(), suite.db)

	// Act
	actual, err := store.Find("users", 1, notifications[0].ID)

	// Assert
	suite.Require().Nil(err)
	suite.Require().Equal(notifications[0].ID, actual.ID)
	suite.Require().Equal("article.commented", actual.Key)

	// Arrange + Act
	_, err = store.Find("admins", 1, notifications[0].ID)

	// Assert
	suite.Require().ErrorIs(err, an.ErrNotFound)

	// Arrange + Act
	_, err = store.Find("users", 2, notifications[0].ID)

	// Assert
	suite.Require().ErrorIs(err, an.ErrNotFound)

	// Arrange + Act
	_, err = store.Find("users", 1, 99999)

	// Assert
	suite.Require().ErrorIs(err, an.ErrNotFound)
}

func (suite *DBTestSuite) TestNotificationsOpen() {
	// Arrange
	store := postgres.NewNotificationStore(suite.db)

	// Act
	err := store.Open(new(an.Notification), time.Now())

	// Assert
	suite.Require().ErrorIs(err, an.ErrMissingData)

	// Arrange
	owner, members := insertGroupedNotifications(suite.T(), suite.db)

	stale, err := store.Find("users", 1, owner.ID)
	suite.Require().Nil(err)

	at := time.Now().Truncate(time.Microsecond)

	// Act
	err = store.Open(&owner, at)

	// Assert
	suite.Require().Nil(err)
	suite.Require().True(owner.Opened())

	actual, err := store.Find("users", 1, owner.ID)
	suite.Require().Nil(err)
	suite.Require().True(actual.OpenedAt.Valid)
	suite.Require().True(actual.OpenedAt.Time.Equal(at))

	for _, member := range members {
		actual, err = store.Find("users", 1, member.ID)
		suite.Require().Nil(err)
		suite.Require().True(actual.OpenedAt.Valid)
	}

	// Arrange + Act: opening an opened notification changes nothing.
	err = store.Open(&owner, at.Add(time.Minute))

	// Assert
	suite.Require().Nil(err)
	suite.Require().True(owner.OpenedAt.Time.Equal(at))

	// Arrange + Act: a stale copy opens cleanly even when no rows need updating.
	err = store.Open(&stale, at.Add(time.Minute))

	// Assert
	suite.Require().Nil(err)
	suite.Require().True(stale.Opened())

	actual, err = store.Find("users", 1, owner.ID)
	suite.Require().Nil(err)
	suite.Require().True(actual.OpenedAt.Time.Equal(at))
}

func (suite *DBTestSuite) TestNotificationsOpenAll() {
	// Arrange
	store := postgres.NewNotificationStore(suite.db)
	q := postgres.NotificationQuery{TargetType: "users", TargetID: 1}

	// Act
	count, err := store.OpenAll(q, time.Now())

	// Assert
	suite.Require().Nil(err)
	suite.Require().Zero(count)

	// Arrange
	_ = insertNotifications(suite.T(), suite.db)
	_, _ = insertGroupedNotifications(suite.T(), suite.db)

	// Act
	count, err = store.OpenAll(q, time.Now())

	// Assert
	suite.Require().Nil(err)
	suite.Require().Equal(int64(5), count)

	unopened, err := store.UnopenedCount("users", 1)
	suite.Require().Nil(err)
	suite.Require().Zero(unopened)

	// Arrange + Act: everything is already opened.
	count, err = store.OpenAll(q, time.Now())

	// Assert
	suite.Require().Nil(err)
	suite.Require().Zero(count)

	// Arrange
	keyed := []an.Notification{
		{TargetType: "users", TargetID: 3, Key: "article.commented", NotifiableType: "comments", NotifiableID: 30},
		{TargetType: "users", TargetID: 3, Key: "article.commented", NotifiableType: "comments", NotifiableID: 31},
		{TargetType: "users", TargetID: 3, Key: "article.liked", NotifiableType: "likes", NotifiableID: 32},
	}
	suite.Require().Nil(suite.db.Create(&keyed))

	q = postgres.NotificationQuery{TargetType: "users", TargetID: 3, FilteredByKey: "article.commented"}

	// Act
	count, err = store.OpenAll(q, time.Now())

	// Assert
	suite.Require().Nil(err)
	suite.Require().Equal(int64(2), count)

	unopened, err = store.UnopenedCount("users", 3)
	suite.Require().Nil(err)
	suite.Require().Equal(int64(1), unopened)
}

func (suite *DBTestSuite) TestNotificationsDestroy() {
	// Arrange
	store := postgres.NewNotificationStore(suite.db)

	// Act
	err := store.Destroy(an.Notification{})

	// Assert
	suite.Require().ErrorIs(err, an.ErrMissingData)

	// Arrange
	owner, _ := insertGroupedNotifications(suite.T(), suite.db)

	// Act
	err = store.Destroy(owner)

	// Assert
	suite.Require().Nil(err)

	_, err = store.Find("users", 1, owner.ID)
	suite.Require().ErrorIs(err, an.ErrNotFound)

	// NOTE: members keep referencing the archived owner and stay collapsed.
	actual, err := store.List(postgres.NotificationQuery{TargetType: "users", TargetID: 1})
	suite.Require().Nil(err)
	suite.Require().Len(actual, 0)

	archived := new(an.Notification)
	suite.Require().Nil(suite.db.Unscoped().Where("id = ?", owner.ID).First(archived))
	suite.Require().True(archived.DeletedAt.IsDeleted())
}

func (suite *DBTestSuite) TestNotificationsUnopenedCount() {
	// Arrange
	store := postgres.NewNotificationStore(suite.db)
	notifications := insertNotifications(suite.T(), suite.db)
	owner, _ := insertGroupedNotifications(suite.T(), suite.db)

	// Act
	count, err := store.UnopenedCount("users", 1)

	// Assert: members do not inflate the badge number.
	suite.Require().Nil(err)
	suite.Require().Equal(int64(3), count)

	// Arrange
	suite.Require().Nil(store.Open(&owner, time.Now()))

	// Act
	count, err = store.UnopenedCount("users", 1)

	// Assert
	suite.Require().Nil(err)
	suite.Require().Equal(int64(2), count)

	// Arrange
	suite.Require().Nil(store.Open(&notifications[0], time.Now()))

	// Act
	count, err = store.UnopenedCount("users", 1)

	// Assert
	suite.Require().Nil(err)
	suite.Require().Equal(int64(1), count)
}
