package contacts

import (
	"context"

	"github.com/google/uuid"

	"github.com/coreloop/cx/db"
	"github.com/coreloop/cx/o11y"
)

func queryInsertContact(ctx context.Context, q db.Querier, toAdd ToAdd) (id uuid.UUID, err error) {
	ctx, span := db.Span(ctx, "contacts", "query_insert_contact")
	defer o11y.End(span, &err)

	err = q.NamedGetContext(ctx, &id, insertContactSQL, toAdd)
	if err != nil {
		return uuid.UUID{}, err
	}
	return id, nil
}

// language=PostgreSQL
var insertContactSQL = `
INSERT INTO contacts (
	id,
	org,
	name,
	email
)
VALUES (
	gen_random_uuid()::text,
	:org,
	:name,
	:email
)
ON CONFLICT (email) DO NOTHING
RETURNING
	id
;`

func queryCountOrgContacts(ctx context.Context, q db.Querier, org string) (count int, err error) {
	ctx, span := db.Span(ctx, "contacts", "query_count_org_contacts")
	defer o11y.End(span, &err)
	span.AddField("org", org)

	err = q.GetContext(ctx, &count, countOrgContactsSQL, org)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// language=PostgreSQL
var countOrgContactsSQL = `
SELECT
	COUNT(*)
FROM
	contacts
WHERE
	org = $1
;`

func queryGetContactByID(ctx context.Context, q db.Querier, id uuid.UUID) (contact *Contact, err error) {
	ctx, span := db.Span(ctx, "contacts", "query_get_contact_by_id")
	defer o11y.End(span, &err)
	span.AddField("id", id)

	contact = &Contact{}
	err = q.GetContext(ctx, contact, getContactByIDSQL, id)
	if err != nil {
		return nil, err
	}

	return contact, nil
}

// language=PostgreSQL
var getContactByIDSQL = `
SELECT
	id,
	org,
	name,
	email
FROM
	contacts
WHERE
	id = $1
LIMIT 1
;`

func queryContactsByOrg(ctx context.Context, q db.Querier, org, nameFilter string) (list []Contact, err error) {
	ctx, span := db.Span(ctx, "contacts", "query_contacts_by_org")
	defer o11y.End(span, &err)
	span.AddField("org", org)

	if nameFilter == "" {
		err = q.SelectContext(ctx, &list, contactsByOrgSQL, org)
	} else {
		err = q.SelectContext(ctx, &list, contactsByOrgAndNameSQL, org,
			"%"+db.EscapeLike(nameFilter)+"%")
	}
	if err != nil {
		return nil, err
	}
	return list, nil
}

// language=PostgreSQL
var contactsByOrgSQL = `
SELECT
	id,
	org,
	name,
	email
FROM
	contacts
WHERE
	org = $1
ORDER BY
	name
;`

// language=PostgreSQL
var contactsByOrgAndNameSQL = `
SELECT
	id,
	org,
	name,
	email
FROM
	contacts
WHERE
	org = $1
AND
	name LIKE $2
ORDER BY
	name
;`

func queryDeleteContact(ctx context.Context, q db.Querier, id uuid.UUID) (err error) {
	ctx, span := db.Span(ctx, "contacts", "query_delete_contact")
	defer o11y.End(span, &err)
	span.AddField("id", id)

	_, err = q.ExecContext(ctx, deleteContactSQL, id)
	return err
}

// language=PostgreSQL
var deleteContactSQL = `
DELETE FROM
	contacts
WHERE
	id = $1
;`
