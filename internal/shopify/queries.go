package shopify

// menuItemFields is repeated per level; Shopify nests menu items up to 3 levels
const menuItemFields = `
        id
        title
        url
        type
        resourceId`

// MenuByHandleQuery fetches a navigation menu with all items nested up to 3 levels
const MenuByHandleQuery = `
query getMenu($handle: String!) {
  menu(handle: $handle) {
    id
    handle
    title
    items {` + menuItemFields + `
      items {` + menuItemFields + `
        items {` + menuItemFields + `
        }
      }
    }
  }
}
`

// CollectionByHandleQuery fetches a collection and one page of its products
const CollectionByHandleQuery = `
query getCollection($handle: String!, $first: Int!, $after: String) {
  collection(handle: $handle) {
    id
    handle
    title
    description
    image {
      url
      altText
    }
    products(first: $first, after: $after) {
      pageInfo {
        hasNextPage
        endCursor
      }
      nodes {
        id
        handle
        title
        availableForSale
        priceRange {
          minVariantPrice {
            amount
            currencyCode
          }
        }
        featuredImage {
          url
          altText
        }
      }
    }
  }
}
`

// ProductByHandleQuery fetches a product with variants, images and the collections it belongs to
const ProductByHandleQuery = `
query getProduct($handle: String!) {
  product(handle: $handle) {
    id
    handle
    title
    vendor
    descriptionHtml
    tags
    images(first: 10) {
      nodes {
        url
        altText
      }
    }
    variants(first: 100) {
      nodes {
        id
        title
        sku
        availableForSale
        price {
          amount
          currencyCode
        }
        compareAtPrice {
          amount
          currencyCode
        }
      }
    }
    collections(first: 20) {
      nodes {
        handle
        title
      }
    }
  }
}
`

// MenusQuery lists all navigation menus (Admin API). Requires read_online_store_navigation scope.
const MenusQuery = `
query getMenus {
  menus(first: 50) {
    nodes {
      id
      handle
      title
    }
  }
}
`
