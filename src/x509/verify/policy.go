// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509verify

import (
	"context"
	"encoding/asn1"
	"slices"

	x509cert "github.com/H0llyW00dzZ/x509-trust-verifier/src/x509/cert"
)

// policyOutcome is the result of the policy evaluation, computed once per
// verification and reported when the walk reaches depth.
type policyOutcome struct {
	code     Code
	depth    int
	err      error
	policies []asn1.ObjectIdentifier
}

func (e *engine) checkPolicy(_ context.Context, i int) bool {
	if e.policy.code == OK || e.policy.depth != i {
		return false
	}
	return e.c.fail(e.policy.code, i, e.policy.err)
}

type policyNode struct {
	policy   asn1.ObjectIdentifier
	expected []asn1.ObjectIdentifier
	parent   *policyNode
}

func (n *policyNode) isAny() bool { return n.policy.Equal(x509cert.OIDAnyPolicy) }

// policyTree is the RFC 5280 valid_policy_tree. levels[0] holds the root.
type policyTree struct {
	levels [][]*policyNode
}

func newPolicyTree() *policyTree {
	root := &policyNode{policy: x509cert.OIDAnyPolicy, expected: []asn1.ObjectIdentifier{x509cert.OIDAnyPolicy}}
	return &policyTree{levels: [][]*policyNode{{root}}}
}

func (t *policyTree) add(depth int, n *policyNode) {
	for len(t.levels) <= depth {
		t.levels = append(t.levels, nil)
	}
	t.levels[depth] = append(t.levels[depth], n)
}

// prune removes every node above depth that has no children and reports
// whether the tree is still non-empty.
func (t *policyTree) prune(depth int) bool {
	for len(t.levels) <= depth {
		t.levels = append(t.levels, nil)
	}
	for l := depth - 1; l >= 0; l-- {
		parents := make(map[*policyNode]bool, len(t.levels[l+1]))
		for _, n := range t.levels[l+1] {
			parents[n.parent] = true
		}
		t.levels[l] = slices.DeleteFunc(t.levels[l], func(n *policyNode) bool { return !parents[n] })
	}
	return len(t.levels[0]) > 0
}

// dropOrphans removes nodes whose parent was deleted.
func (t *policyTree) dropOrphans() {
	for l := 1; l < len(t.levels); l++ {
		alive := make(map[*policyNode]bool, len(t.levels[l-1]))
		for _, n := range t.levels[l-1] {
			alive[n] = true
		}
		t.levels[l] = slices.DeleteFunc(t.levels[l], func(n *policyNode) bool { return !alive[n.parent] })
	}
}

func containsPolicy(list []asn1.ObjectIdentifier, oid asn1.ObjectIdentifier) bool {
	return slices.ContainsFunc(list, oid.Equal)
}

// evaluatePolicy runs RFC 5280 section 6.1 policy processing over the chain.
// A self-issued trust anchor is not part of the path.
func evaluatePolicy(chain []*x509cert.Certificate, anchored bool, sn *snapshot) policyOutcome {
	n := len(chain)
	if anchored && n > 0 && chain[n-1].IsSelfIssued() {
		n--
	}
	out := policyOutcome{code: OK, depth: -1}
	if n == 0 {
		return out
	}

	flags := sn.flags.Normalize()
	explicit, inhibitAny, mapping := n+1, n+1, n+1
	if flags.Has(ExplicitPolicy) {
		explicit = 0
	}
	if flags.Has(InhibitAny) {
		inhibitAny = 0
	}
	if flags.Has(InhibitMap) {
		mapping = 0
	}

	fail := func(code Code, depth int, err error) policyOutcome {
		return policyOutcome{code: code, depth: depth, err: err}
	}

	tree := newPolicyTree()
	for k := 1; k <= n; k++ {
		ci := n - k
		cert := chain[ci]
		selfIssued := cert.IsSelfIssued()

		policies, hasPolicies, err := cert.Policies()
		if err != nil {
			return fail(InvalidPolicyExtension, ci, err)
		}
		maps, _, err := cert.PolicyMappings()
		if err != nil {
			return fail(InvalidPolicyExtension, ci, err)
		}
		pc, _, err := cert.PolicyConstraints()
		if err != nil {
			return fail(InvalidPolicyExtension, ci, err)
		}
		skip, hasSkip, err := cert.InhibitAnyPolicy()
		if err != nil {
			return fail(InvalidPolicyExtension, ci, err)
		}

		if tree != nil && hasPolicies {
			processPolicies(tree, k, policies, inhibitAny > 0 || (k < n && selfIssued))
			if !tree.prune(k) {
				tree = nil
			}
		}
		if !hasPolicies {
			tree = nil
		}
		if explicit <= 0 && tree == nil {
			return fail(NoExplicitPolicy, ci, nil)
		}

		if k == n {
			break
		}

		if tree != nil && len(maps) > 0 {
			applyMappings(tree, k, maps, mapping > 0)
			if !tree.prune(k) {
				tree = nil
			}
		}
		if !selfIssued {
			explicit = decrement(explicit)
			mapping = decrement(mapping)
			inhibitAny = decrement(inhibitAny)
		}
		if pc.RequireExplicitPolicy >= 0 && pc.RequireExplicitPolicy < explicit {
			explicit = pc.RequireExplicitPolicy
		}
		if pc.InhibitPolicyMapping >= 0 && pc.InhibitPolicyMapping < mapping {
			mapping = pc.InhibitPolicyMapping
		}
		if hasSkip && skip < inhibitAny {
			inhibitAny = skip
		}
	}

	explicit = decrement(explicit)
	if pc, ok, _ := chain[0].PolicyConstraints(); ok && pc.RequireExplicitPolicy == 0 {
		explicit = 0
	}

	if tree != nil && len(sn.policies) > 0 && !containsPolicy(sn.policies, x509cert.OIDAnyPolicy) {
		if !intersectUserPolicies(tree, n, sn.policies) {
			tree = nil
		}
	}
	if tree == nil {
		if explicit <= 0 {
			return fail(NoExplicitPolicy, 0, nil)
		}
		return out
	}
	for _, node := range tree.levels[n] {
		if !containsPolicy(out.policies, node.policy) {
			out.policies = append(out.policies, node.policy)
		}
	}
	return out
}

func decrement(v int) int {
	if v > 0 {
		return v - 1
	}
	return v
}

// processPolicies adds the depth k nodes for the certificate policies.
func processPolicies(tree *policyTree, k int, policies []asn1.ObjectIdentifier, allowAny bool) {
	parents := tree.levels[k-1]
	for _, p := range policies {
		if p.Equal(x509cert.OIDAnyPolicy) {
			continue
		}
		matched := false
		for _, parent := range parents {
			if containsPolicy(parent.expected, p) {
				tree.add(k, &policyNode{policy: p, expected: []asn1.ObjectIdentifier{p}, parent: parent})
				matched = true
			}
		}
		if matched {
			continue
		}
		for _, parent := range parents {
			if parent.isAny() {
				tree.add(k, &policyNode{policy: p, expected: []asn1.ObjectIdentifier{p}, parent: parent})
			}
		}
	}

	if !allowAny || !containsPolicy(policies, x509cert.OIDAnyPolicy) {
		return
	}
	for _, parent := range parents {
		for _, p := range parent.expected {
			if hasChild(tree, k, parent, p) {
				continue
			}
			tree.add(k, &policyNode{policy: p, expected: []asn1.ObjectIdentifier{p}, parent: parent})
		}
	}
}

func hasChild(tree *policyTree, k int, parent *policyNode, p asn1.ObjectIdentifier) bool {
	if len(tree.levels) <= k {
		return false
	}
	for _, n := range tree.levels[k] {
		if n.parent == parent && n.policy.Equal(p) {
			return true
		}
	}
	return false
}

// applyMappings rewrites the expected policy sets at depth k, or deletes the
// mapped nodes when mapping is inhibited.
func applyMappings(tree *policyTree, k int, maps []x509cert.PolicyMapping, allowed bool) {
	subjects := make(map[string][]asn1.ObjectIdentifier)
	var order []asn1.ObjectIdentifier
	for _, m := range maps {
		key := m.IssuerDomainPolicy.String()
		if _, ok := subjects[key]; !ok {
			order = append(order, m.IssuerDomainPolicy)
		}
		if !containsPolicy(subjects[key], m.SubjectDomainPolicy) {
			subjects[key] = append(subjects[key], m.SubjectDomainPolicy)
		}
	}

	for _, id := range order {
		mapped := subjects[id.String()]
		if !allowed {
			tree.levels[k] = slices.DeleteFunc(tree.levels[k], func(n *policyNode) bool { return n.policy.Equal(id) })
			continue
		}
		found := false
		for _, n := range tree.levels[k] {
			if n.policy.Equal(id) {
				n.expected = slices.Clone(mapped)
				found = true
			}
		}
		if found {
			continue
		}
		for _, n := range tree.levels[k] {
			if n.isAny() {
				tree.add(k, &policyNode{policy: id, expected: slices.Clone(mapped), parent: n.parent})
				break
			}
		}
	}
}

// intersectUserPolicies restricts the tree to the user initial policy set and
// reports whether any node remains.
func intersectUserPolicies(tree *policyTree, n int, user []asn1.ObjectIdentifier) bool {
	// A node is in the valid_policy_node_set when every ancestor below the
	// root is an anyPolicy node.
	inSet := func(node *policyNode) bool {
		for p := node.parent; p != nil && p.parent != nil; p = p.parent {
			if !p.isAny() {
				return false
			}
		}
		return true
	}

	for l := 1; l <= n; l++ {
		tree.levels[l] = slices.DeleteFunc(tree.levels[l], func(node *policyNode) bool {
			return inSet(node) && !node.isAny() && !containsPolicy(user, node.policy)
		})
	}
	tree.dropOrphans()

	leaf := tree.levels[n]
	for _, node := range leaf {
		if !node.isAny() {
			continue
		}
		for _, p := range user {
			present := slices.ContainsFunc(tree.levels[n], func(x *policyNode) bool {
				return inSet(x) && x.policy.Equal(p)
			})
			if !present {
				tree.add(n, &policyNode{policy: p, expected: []asn1.ObjectIdentifier{p}, parent: node.parent})
			}
		}
	}
	tree.levels[n] = slices.DeleteFunc(tree.levels[n], func(node *policyNode) bool { return node.isAny() })

	// Nodes below the leaf depth whose descendants were all removed go too.
	return tree.prune(n) && len(tree.levels[n]) > 0
}
