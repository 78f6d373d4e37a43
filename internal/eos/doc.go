// Package eos builds queryable equation-of-state surfaces for the
// materials that make up an icy world: liquid ocean solutions, ice
// polymorphs, silicate mantle rock, and iron core alloys.
//
// An [EOS] wraps four continuous property interpolants (density, heat
// capacity, thermal expansivity, thermal conductivity) and a discrete
// phase classifier, all valid over the sampled pressure/temperature
// window. Construction is expensive, so a [Cache] memoizes surfaces per
// composition label: an identical or narrower request reuses the cached
// surface, a wider request rebuilds over the union of ranges.
//
// [FindFreezePressure] and [FindFreezeTemperature] locate phase-boundary
// crossings of the classifier by bracketed bisection.
package eos
