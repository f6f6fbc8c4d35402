/*
Package postgres manages our database connection and the stores persisting notifications
and subscriptions. As part of the connection process, we also ensure the schema exists. The
situation where the database is simply a target for some testing has been considered as well.
In this scenario, we are dropping and recreating the public schema.

The *DB wrapper exposes a chainable query surface over GORM that normalizes errors to the
root package's sentinels. NotificationStore and SubscriptionStore compose that surface into
the operations the HTTP handlers need, so handler tests can stub them without a database
running in the environment.
*/
package postgres
