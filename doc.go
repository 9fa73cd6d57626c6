// Package pgmodel is a typed data access layer for PostgreSQL.
/*
pgmodel maps Go structs to relations. A Model describes the columns, primary
key and projection of an entity type, and the package level functions FindAll,
FindWhere, FindByPK, CountWhere, ExistWhere, InsertOne, UpsertOne, UpdateOne,
UpdateByPK, DeleteOne, DeleteByPK, DeleteWhere, PaginateFindWhere and Copy build
the SQL and convert between rows and entities.

Establishing a Connection

Use Connect to establish a connection. It accepts a connection string in URL or
keyword/value format and will read the environment for libpq style environment
variables.

	conn, err := pgmodel.Connect(context.Background(), os.Getenv("DATABASE_URL"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(context.Background())

A Conn is safe for concurrent use, but each call holds it for its whole round
trip. Use a Pool to run statements in parallel, and a Registry to keep several
named pools with one designated as the default.

Models

Every struct field with a db tag is a column. Field types come from the pgtype
package. Option marks a column that may be NULL.

	type Event struct {
		UUID      pgtype.UUID                 `db:"uuid,pk"`
		Name      pgtype.Text                 `db:"name"`
		VisitorID pgtype.Option[pgtype.Int4]  `db:"visitor_id"`
	}

	var events = pgmodel.MustNewModel[Event]("events")

	found, err := pgmodel.FindWhere(ctx, conn, events, "name = $*", []pgtype.Value{pgtype.Text("pageview")}, "order by name")

Placeholders

Clauses may use "$*" markers. Each one is replaced by the next positional
parameter, so "name = $* and visitor_id = $*" becomes
"name = $1 and visitor_id = $2". Native "$n" placeholders are left unchanged and
markers are numbered after the highest of them, so "id = $1 and name = $*"
becomes "id = $1 and name = $2".

Transactions

Begin starts a transaction on a connection. Pass tx.Conn() to the model
functions to run them inside it. Tx.Begin creates a savepoint.

	err := conn.BeginFunc(ctx, nil, func(tx *pgmodel.Tx) error {
		_, err := pgmodel.InsertOne(ctx, tx.Conn(), events, event)
		return err
	})

Logging

pgmodel defines a simple logger interface. Connection logging is configured by
the Logger and LogLevel fields of Config. Adapters for common logging packages
are in the log directory.
*/
package pgmodel
