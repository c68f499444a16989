// Package reconciler realizes planned resource changes against a provider.
//
// Apply walks a plan and, for every resource instance, decodes its
// configuration against the realized outputs of its parents, diffs the inputs
// against the stored state and performs the minimal provider operation:
// nothing, create, update in place, or delete and recreate when an input that
// cannot be changed in place differs.
//
// Failures are contained per instance. A failed instance blocks its
// dependents, transitively, while unrelated branches of the plan keep
// executing. The final report lists the terminal state of every instance.
//
// State is flushed to storage after every instance transition, so an
// interrupted run loses at most the instances that were in flight.
package reconciler
