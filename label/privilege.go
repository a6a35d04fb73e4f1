package label

// Privilege is the downgrading (declassification + endorsement) privilege
// associated with a Node instance: the tags it may strip from a label's
// confidentiality component, and the tags it may add to a label's
// integrity component.
//
// Downgrading is a privileged act and is never applied implicitly — every
// caller that wants a downgraded label must say so explicitly (see
// runtime.Downgrade / runtime.NoDowngrade).
type Privilege struct {
	Declassify TagSet
	Endorse    TagSet
}

// TopPrivilege returns the top privilege: a Node holding it may
// declassify every confidentiality tag. Its endorse set holds only the
// Top tag, which Downgrade adds to the integrity set like any other
// endorse tag; it does not satisfy other integrity tags. It must only be
// granted to trusted pseudo-nodes by the NodeFactory.
func TopPrivilege() Privilege {
	return Privilege{
		Declassify: TagSet{Top()},
		Endorse:    TagSet{Top()},
	}
}

// hasTopDeclassify reports whether p may declassify any confidentiality
// tag whatsoever.
func (p Privilege) hasTopDeclassify() bool {
	return p.Declassify.Contains(Top())
}

// Downgrade returns the least restrictive Label that l can be weakened to
// using p: confidentiality tags p may declassify are removed (or, if p
// holds the top declassify privilege, all of them are), and integrity
// tags p may endorse are added.
func (p Privilege) Downgrade(l Label) Label {
	var confidentiality TagSet
	if p.hasTopDeclassify() {
		confidentiality = nil
	} else {
		confidentiality = minus(l.Confidentiality, p.Declassify)
	}
	return Label{
		Confidentiality: confidentiality,
		Integrity:       union(l.Integrity, p.Endorse),
	}
}

// AsLabel converts a Privilege directly to a Label, treating the
// declassify tags as the confidentiality component and the endorse tags
// as the integrity component. This is a stand-in representation used only
// for label-readback of a Node's own privilege (see
// RuntimeProxy.SerializedNodePrivilege); a future revision based on robust
// declassification / transparent endorsement would remove the need for
// this conversion entirely.
func (p Privilege) AsLabel() Label {
	return Label{
		Confidentiality: append(TagSet(nil), p.Declassify...),
		Integrity:       append(TagSet(nil), p.Endorse...),
	}
}

// Clone returns a deep copy of p.
func (p Privilege) Clone() Privilege {
	d := make(TagSet, len(p.Declassify))
	copy(d, p.Declassify)
	e := make(TagSet, len(p.Endorse))
	copy(e, p.Endorse)
	return Privilege{Declassify: d, Endorse: e}
}
