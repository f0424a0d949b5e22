package checkout

// projectedStatuses are the request statuses a cart view may be joined with.
var projectedStatuses = map[Status]bool{
	StatusPending:           true,
	StatusApproved:          true,
	StatusRejected:          true,
	StatusPartiallyApproved: true,
}

// needsProjection reports whether a stored cart's items should be overlaid
// with request decisions when read.
func needsProjection(c Cart) bool {
	return c.Status == StatusPending || c.Status == StatusConfirmed
}

// latestRequestFor picks the most recent projectable request of userID.
func latestRequestFor(requests []Request, userID ID) (Request, bool) {
	var best Request
	var found bool
	for _, r := range requests {
		if r.UserID != userID || !projectedStatuses[r.Status] {
			continue
		}
		if !found || newer(r, best) {
			best, found = r, true
		}
	}
	return best, found
}

// project overlays the request's per-book status and note onto a copy of the
// cart. Cart items without a matching book are returned unchanged.
func project(c Cart, req Request) Cart {
	c.Items = cloneItems(c.Items)
	for i := range c.Items {
		if j := req.indexOf(c.Items[i].BookID); j >= 0 {
			c.Items[i].Status = req.Books[j].Status
			c.Items[i].AdminNote = req.Books[j].AdminNote
			c.Items[i].ProcessedAt = req.Books[j].ProcessedAt
		}
	}
	return c
}
