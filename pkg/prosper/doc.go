// Package prosper is a client for the Prosper lending REST API.
//
// Every call follows the same pattern: attach the Basic auth and Accept headers,
// send the request, require HTTP 200, then decode the buffered JSON body into the
// caller's type. Fetch and Post expose that core directly for custom OData paths;
// the endpoint methods are thin parameterizations of it.
//
// Basic usage:
//
//	client, err := prosper.New(username, password)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if !client.Authenticate(ctx) {
//	    log.Fatal("credentials rejected")
//	}
//
//	account, err := client.GetAccount(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("Available:", account.AvailableCashBalance)
//
//	// Custom query through the generic core
//	notes, err := prosper.Fetch[[]prosper.Note](ctx, client, prosper.ODataFilter(prosper.PathNotes, "NoteStatus eq 1"))
package prosper
