package postgres_test

import (
	"time"

	an "github.com/sergii/activity-notification"
	"github.com/sergii/activity-notification/postgres"
)

func (suite *DBTestSuite) TestSubscriptionsCreate() {
	// Arrange
	store := postgres.NewSubscriptionStore(suite.db)

	// Act
	err := store.Create(nil)

	// Assert
	suite.Require().ErrorIs(err, an.ErrMissingData)

	// Act
	err = store.Create(&an.Subscription{TargetType: "users", TargetID: 1})

	// Assert
	suite.Require().ErrorIs(err, an.ErrMissingData)

	// Act
	err = store.Create(&an.Subscription{
		TargetType:         "users",
		TargetID:           1,
		Key:                "article.commented",
		SubscribingToEmail: true,
	})

	// Assert
	suite.Require().ErrorIs(err, an.ErrNotValid)

	// Arrange
	s := an.Subscription{
		TargetType:         "users",
		TargetID:           1,
		Key:                "article.commented",
		Subscribing:        true,
		SubscribingToEmail: true,
	}

	// Act
	err = store.Create(&s)

	// Assert
	suite.Require().Nil(err)
	suite.Require().NotZero(s.ID)
	suite.Require().True(s.SubscribedAt.Valid)
	suite.Require().True(s.SubscribedToEmailAt.Valid)

	// Act
	err = store.Create(&an.Subscription{
		TargetType:  "users",
		TargetID:    1,
		Key:         "article.commented",
		Subscribing: true,
	})

	// Assert
	suite.Require().ErrorIs(err, an.ErrExists)

	// Arrange
	muted := an.Subscription{TargetType: "users", TargetID: 1, Key: "article.liked"}

	// Act
	err = store.Create(&muted)

	// Assert
	suite.Require().Nil(err)
	suite.Require().False(muted.SubscribedAt.Valid)
	suite.Require().False(muted.SubscribedToEmailAt.Valid)

	// Arrange + Act: archiving a subscription frees its key.
	suite.Require().Nil(store.Destroy(s))

	err = store.Create(&an.Subscription{
		TargetType:  "users",
		TargetID:    1,
		Key:         "article.commented",
		Subscribing: true,
	})

	// Assert
	suite.Require().Nil(err)
}

func (suite *DBTestSuite) TestSubscriptionsFind() {
	// Arrange
	store := postgres.NewSubscriptionStore(suite.db)

	s := an.Subscription{TargetType: "users", TargetID: 1, Key: "article.commented", Subscribing: true}
	suite.Require().Nil(store.Create(&s))

	// Act
	actual, err := store.Find("users", 1, s.ID)

	// Assert
	suite.Require().Nil(err)
	suite.Require().Equal(s.ID, actual.ID)
	suite.Require().Equal("article.commented", actual.Key)
	suite.Require().True(actual.Subscribing)

	// Act
	_, err = store.Find("admins", 1, s.ID)

	// Assert
	suite.Require().ErrorIs(err, an.ErrNotFound)

	// Act
	_, err = store.Find("users", 2, s.ID)

	// Assert
	suite.Require().ErrorIs(err, an.ErrNotFound)

	// Act
	_, err = store.Find("users", 1, 99999)

	// Assert
	suite.Require().ErrorIs(err, an.ErrNotFound)
}

func (suite *DBTestSuite) TestSubscriptionsList() {
	// Arrange
	store := postgres.NewSubscriptionStore(suite.db)
	q := postgres.SubscriptionQuery{TargetType: "users", TargetID: 1}

	// Act
	actual, err := store.List(q)

	// Assert
	suite.Require().Nil(err)
	suite.Require().Len(actual, 0)

	// Arrange
	subscriptions := []an.Subscription{
		{TargetType: "users", TargetID: 1, Key: "article.commented", Subscribing: true},
		{TargetType: "users", TargetID: 1, Key: "article.liked", Subscribing: true},
		{TargetType: "users", TargetID: 2, Key: "article.commented", Subscribing: true},
	}
	for i := range subscriptions {
		suite.Require().Nil(store.Create(&subscriptions[i]))
	}

	// Act
	actual, err = store.List(q)

	// Assert
	suite.Require().Nil(err)
	suite.Require().Len(actual, 2)
	suite.Require().Equal(subscriptions[1].ID, actual[0].ID)
	suite.Require().Equal(subscriptions[0].ID, actual[1].ID)

	// Arrange
	q.Reverse = true

	// Act
	actual, err = store.List(q)

	// Assert
	suite.Require().Nil(err)
	suite.Require().Len(actual, 2)
	suite.Require().Equal(subscriptions[0].ID, actual[0].ID)

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
	q.Limit = 1

	// Act
	actual, err = store.List(q)

	// Assert
	suite.Require().Nil(err)
	suite.Require().Len(actual, 1)
}

func (suite *DBTestSuite) TestSubscriptionsSubscribe() {
	// Arrange
	store := postgres.NewSubscriptionStore(suite.db)

	// Act
	err := store.Subscribe(new(an.Subscription), time.Time{})

	// Assert
	suite.Require().ErrorIs(err, an.ErrMissingData)

	// Arrange
	s := an.Subscription{
		TargetType:         "users",
		TargetID:           1,
		Key:                "article.commented",
		Subscribing:        true,
		SubscribingToEmail: true,
	}
	suite.Require().Nil(store.Create(&s))
	suite.Require().Nil(store.SubscribeToOptionalTarget(&s, "slack", time.Now()))

	at := time.Now().Truncate(time.Microsecond)

	// Act
	err = store.Unsubscribe(&s, at)

	// Assert: the email and optional channels go down with the default channel.
	suite.Require().Nil(err)
	suite.Require().False(s.Subscribing)
	suite.Require().False(s.SubscribingToEmail)
	suite.Require().False(s.SubscribingToOptionalTarget("slack"))

	actual, err := store.Find("users", 1, s.ID)
	suite.Require().Nil(err)
	suite.Require().False(actual.Subscribing)
	suite.Require().False(actual.SubscribingToEmail)
	suite.Require().False(actual.SubscribingToOptionalTarget("slack"))
	suite.Require().True(actual.UnsubscribedAt.Time.Equal(at))
	suite.Require().True(actual.UnsubscribedToEmailAt.Time.Equal(at))

	// Arrange
	at = at.Add(time.Minute)

	// Act
	err = store.Subscribe(&actual, at)

	// Assert: and they come back with it.
	suite.Require().Nil(err)

	actual, err = store.Find("users", 1, s.ID)
	suite.Require().Nil(err)
	suite.Require().True(actual.Subscribing)
	suite.Require().True(actual.SubscribingToEmail)
	suite.Require().True(actual.SubscribingToOptionalTarget("slack"))
	suite.Require().True(actual.SubscribedAt.Time.Equal(at))
	suite.Require().True(actual.SubscribedToEmailAt.Time.Equal(at))

	// Act: a zero time unsubscribes at the current time.
	err = store.Unsubscribe(&actual, time.Time{})

	// Assert
	suite.Require().Nil(err)

	actual, err = store.Find("users", 1, s.ID)
	suite.Require().Nil(err)
	suite.Require().False(actual.Subscribing)
	suite.Require().True(actual.UnsubscribedAt.Valid)
}

func (suite *DBTestSuite) TestSubscriptionsEmail() {
	// Arrange
	store := postgres.NewSubscriptionStore(suite.db)

	// Act
	err := store.SubscribeToEmail(new(an.Subscription), time.Time{})

	// Assert
	suite.Require().ErrorIs(err, an.ErrMissingData)

	// Arrange
	s := an.Subscription{TargetType: "users", TargetID: 1, Key: "article.commented", Subscribing: true}
	suite.Require().Nil(store.Create(&s))

	at := time.Now().Truncate(time.Microsecond)

	// Act
	err = store.SubscribeToEmail(&s, at)

	// Assert
	suite.Require().Nil(err)

	actual, err := store.Find("users", 1, s.ID)
	suite.Require().Nil(err)
	suite.Require().True(actual.SubscribingToEmail)
	suite.Require().True(actual.SubscribedToEmailAt.Time.Equal(at))

	// Arrange
	at = at.Add(time.Minute)

	// Act
	err = store.UnsubscribeToEmail(&actual, at)

	// Assert: the default channel stays up when email goes down.
	suite.Require().Nil(err)

	actual, err = store.Find("users", 1, s.ID)
	suite.Require().Nil(err)
	suite.Require().True(actual.Subscribing)
	suite.Require().False(actual.SubscribingToEmail)
	suite.Require().True(actual.UnsubscribedToEmailAt.Time.Equal(at))

	// Arrange
	muted := an.Subscription{TargetType: "users", TargetID: 1, Key: "article.liked"}
	suite.Require().Nil(store.Create(&muted))

	// Act
	err = store.SubscribeToEmail(&muted, time.Time{})

	// Assert
	suite.Require().ErrorIs(err, an.ErrNotValid)

	// Act: unsubscribing carries no such requirement.
	err = store.UnsubscribeToEmail(&muted, time.Time{})

	// Assert
	suite.Require().Nil(err)
}

func (suite *DBTestSuite) TestSubscriptionsOptionalTargets() {
	// Arrange
	store := postgres.NewSubscriptionStore(suite.db)

	// Act
	err := store.SubscribeToOptionalTarget(new(an.Subscription), "slack", time.Time{})

	// Assert
	suite.Require().ErrorIs(err, an.ErrMissingData)

	// Arrange
	s := an.Subscription{TargetType: "users", TargetID: 1, Key: "article.commented", Subscribing: true}
	suite.Require().Nil(store.Create(&s))

	// Act
	err = store.SubscribeToOptionalTarget(&s, "", time.Time{})

	// Assert
	suite.Require().ErrorIs(err, an.ErrMissingData)

	// Act
	err = store.UnsubscribeToOptionalTarget(&s, "", time.Time{})

	// Assert
	suite.Require().ErrorIs(err, an.ErrMissingData)

	// Arrange
	at := time.Now().Truncate(time.Microsecond)

	// Act
	err = store.SubscribeToOptionalTarget(&s, "slack", at)

	// Assert
	suite.Require().Nil(err)
	suite.Require().True(s.SubscribingToOptionalTarget("slack"))

	actual, err := store.Find("users", 1, s.ID)
	suite.Require().Nil(err)
	suite.Require().True(actual.SubscribingToOptionalTarget("slack"))
	suite.Require().Equal([]string{"slack"}, actual.OptionalTargetNames())
	suite.Require().Contains(actual.OptionalTargets, "subscribed_to_slack_at")

	// Assert: channels never toggled follow the default channel.
	suite.Require().True(actual.SubscribingToOptionalTarget("sms"))

	// Act
	err = store.UnsubscribeToOptionalTarget(&actual, "slack", at.Add(time.Minute))

	// Assert
	suite.Require().Nil(err)

	actual, err = store.Find("users", 1, s.ID)
	suite.Require().Nil(err)
	suite.Require().True(actual.Subscribing)
	suite.Require().False(actual.SubscribingToOptionalTarget("slack"))
	suite.Require().Contains(actual.OptionalTargets, "unsubscribed_to_slack_at")

	// Arrange
	muted := an.Subscription{TargetType: "users", TargetID: 1, Key: "article.liked"}
	suite.Require().Nil(store.Create(&muted))

	// Act
	err = store.SubscribeToOptionalTarget(&muted, "slack", time.Time{})

	// Assert
	suite.Require().ErrorIs(err, an.ErrNotValid)

	// Act: unsubscribing carries no such requirement.
	err = store.UnsubscribeToOptionalTarget(&muted, "sms", time.Time{})

	// Assert
	suite.Require().Nil(err)
	suite.Require().False(muted.SubscribingToOptionalTarget("sms"))
}

func (suite *DBTestSuite) TestSubscriptionsDestroy() {
	// Arrange
	store := postgres.NewSubscriptionStore(suite.db)

	// Act
	err := store.Destroy(an.Subscription{})

	// Assert
	suite.Require().ErrorIs(err, an.ErrMissingData)

	// Arrange
	s := an.Subscription{TargetType: "users", TargetID: 1, Key: "article.commented", Subscribing: true}
	suite.Require().Nil(store.Create(&s))

	// Act
	err = store.Destroy(s)

	// Assert
	suite.Require().Nil(err)

	_, err = store.Find("users", 1, s.ID)
	suite.Require().ErrorIs(err, an.ErrNotFound)

	actual, err := store.List(postgres.SubscriptionQuery{TargetType: "users", TargetID: 1})
	suite.Require().Nil(err)
	suite.Require().Len(actual, 0)
}
