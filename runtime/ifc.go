package runtime

import "github.com/silonet/silorun/label"

// Downgrade selects whether an operation applies the caller's privilege
// before comparing labels. It is always an explicit argument (spec.md
// §4.4): privilege application is never implicit.
type Downgrade bool

const (
	// NoDowngrade compares against the node's bare label.
	NoDowngrade Downgrade = false
	// ApplyDowngrade compares against privilege.Downgrade(label).
	ApplyDowngrade Downgrade = true
)

// effectiveLabel returns the label a node's IFC checks are measured
// against: its own label verbatim, or that label downgraded by its
// privilege, depending on dg.
func effectiveLabel(n *nodeInfo, dg Downgrade) label.Label {
	if dg == NoDowngrade {
		return n.label
	}
	return n.privilege.Downgrade(n.label)
}

// validateCanRead succeeds iff sourceLabel.FlowsTo(effective): the node
// may read data at most as confidential, and at least as trusted, as its
// own (possibly downgraded) label.
func validateCanRead(n *nodeInfo, sourceLabel label.Label, dg Downgrade) error {
	effective := effectiveLabel(n, dg)
	if !sourceLabel.FlowsTo(effective) {
		return errPermissionDenied
	}
	return nil
}

// validateCanWrite succeeds iff effective.FlowsTo(targetLabel): the node
// may produce data no less confidential, and no more trusted, than the
// destination requires.
func validateCanWrite(n *nodeInfo, targetLabel label.Label, dg Downgrade) error {
	effective := effectiveLabel(n, dg)
	if !effective.FlowsTo(targetLabel) {
		return errPermissionDenied
	}
	return nil
}
