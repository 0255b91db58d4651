// Package network turns a sanitized input-output table into a production
// network.
//
// # Pipeline
//
// [Build] runs the stages in order:
//
//  1. [TechnicalCoefficients] divides each flow by the buyer's total output.
//  2. [Upstreamness] inverts I - A with gonum and sums each row of the
//     Leontief inverse. The inversion is refused with SINGULAR_MATRIX when
//     the matrix is singular or its condition number exceeds the cap.
//  3. [InputShares] and [OutputShares] normalize flows by the buyer's
//     intermediate inputs and the seller's intermediate sales.
//  4. [RelevanceMask] keeps flows whose input share reaches the threshold,
//     and [FilterMagnitudes] zeroes the rest.
//  5. [SelectSuppliers] and [SelectCustomers] keep, per industry, the
//     strongest partners by flow magnitude.
//  6. [Assemble] merges nodes and lists and checks their alignment.
//
// Upstreamness is rounded to two decimals and shares to three. Edge lists
// keep the canonical industry order of the table, not the ranking.
//
// # Neighbourhoods
//
// [Network.Neighborhood] groups the partners of one industry into
// suppliers, customers and industries that are both.
package network
