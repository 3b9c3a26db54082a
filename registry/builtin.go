package registry

// NumericalAnalysis and PointerAnalysis are the two built-in Analysis registrations a driver
// wires in before running checkers, giving KindNumerical/KindPointer a concrete registration for
// ResolveDependencies to find. Per SPEC_FULL §4.3/§4.8, the actual linear-numerical and
// pointer/region tracking happens inline in the resolver (C7) against state.State directly as it
// evaluates each statement -- these two types carry no extra behavior of their own beyond their
// Kind()/Name() identity; they exist purely so a checker can declare
// Requires([]Kind{KindNumerical}) (as checkers/inspect does) and have the Manager enforce that the
// corresponding domain is active, mirroring add_checker_dependency<InspectionChecker,
// NumericalAnalysis> in original_source/analyzer/include/analyzer/core/checker/debug/inspection.hpp
// even though this core folds the "analysis" itself into the resolver rather than a standalone
// callback object.
type NumericalAnalysis struct{ BaseAnalysis }

func (NumericalAnalysis) Kind() Kind   { return KindNumerical }
func (NumericalAnalysis) Name() string { return "numerical" }

type PointerAnalysis struct{ BaseAnalysis }

func (PointerAnalysis) Kind() Kind   { return KindPointer }
func (PointerAnalysis) Name() string { return "pointer" }
